package main

import "github.com/renatogalera/chatstream/cmd"

func main() {
	cmd.Execute()
}
