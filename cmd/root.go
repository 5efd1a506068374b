// Package cmd implements the chatstream CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/chatstream/pkg/chat"
	"github.com/renatogalera/chatstream/pkg/client"
	"github.com/renatogalera/chatstream/pkg/config"
	"github.com/renatogalera/chatstream/pkg/httpx"
	"github.com/renatogalera/chatstream/pkg/stream"
	"github.com/renatogalera/chatstream/pkg/ui"
)

var summaryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")).
	Italic(true)

type rootFlags struct {
	model    string
	baseURL  string
	apiKey   string
	system   string
	timeout  time.Duration
	plain    bool
	noStream bool
}

// NewRootCmd creates the chatstream root command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "chatstream [prompt...]",
		Short: "Stream a chat completion to your terminal",
		Long: `chatstream sends a prompt to an OpenAI-compatible chat completions
endpoint and renders the streamed response as it arrives.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&flags.model, "model", "", "Model identifier (overrides config)")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "API base URL (overrides config)")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "API key (or set "+config.APIKeyEnvVar+")")
	cmd.Flags().StringVar(&flags.system, "system", "", "System prompt")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Overall request timeout")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "Print deltas to stdout without the TUI")
	cmd.Flags().BoolVar(&flags.noStream, "no-stream", false, "Use a single-shot completion instead of streaming")
	return cmd
}

// Execute runs the CLI.
func Execute() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := NewRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("chatstream failed")
	}
}

func runChat(cobraCmd *cobra.Command, flags *rootFlags, prompt string) error {
	cfg, err := config.LoadOrCreateConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mgr := config.NewManager(cfg)
	mgr.SetFlag("model", flags.model)
	mgr.SetFlag("baseURL", flags.baseURL)
	mgr.SetFlag("system", flags.system)
	mgr.SetFlag("timeoutSeconds", int(flags.timeout.Seconds()))
	cfg = mgr.Merge()

	if err := cfg.Validate(); err != nil {
		return err
	}
	apiKey, err := config.ResolveAPIKey(flags.apiKey, cfg.APIKey)
	if err != nil {
		return err
	}

	c := client.New(apiKey,
		client.WithBaseURL(cfg.BaseURL),
		client.WithOrganization(cfg.Organization),
		client.WithLogger(log.Logger),
	)

	ctx := cobraCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if cfg.TimeoutSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	req := chat.Request{
		Model:       cfg.Model,
		Messages:    buildMessages(cfg.System, prompt),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	if flags.noStream {
		return runSingleShot(ctx, c, req)
	}

	s, err := c.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return describeAPIError(err)
	}

	if flags.plain {
		return runPlainStream(s)
	}
	return runTUIStream(s, cancel, prompt)
}

func buildMessages(system, prompt string) []chat.Message {
	var msgs []chat.Message
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Content: system})
	}
	return append(msgs, chat.Message{Role: chat.RoleUser, Content: prompt})
}

func runSingleShot(ctx context.Context, c *client.Client, req chat.Request) error {
	completion, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return describeAPIError(err)
	}
	fmt.Println(strings.TrimSpace(completion.FirstContent()))
	printSummary(completion)
	return nil
}

// runPlainStream prints each content delta as it arrives.
func runPlainStream(s *stream.Stream) error {
	defer s.Close()
	for {
		view, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Println()
			return fmt.Errorf("stream interrupted: %w", err)
		}
		if n := len(view.Chunks); n > 0 {
			if choices := view.Chunks[n-1].Choices; len(choices) > 0 && choices[0].Delta != nil {
				fmt.Print(choices[0].Delta.Content)
			}
		}
	}
	fmt.Println()
	printSummary(s.Completion())
	return nil
}

func runTUIStream(s *stream.Stream, cancel context.CancelFunc, prompt string) error {
	deltaCh := make(chan string)
	resultCh := make(chan ui.StreamResult, 1)

	go func() {
		defer close(deltaCh)
		for {
			view, err := s.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				s.Close()
				resultCh <- ui.StreamResult{Completion: s.Completion(), Err: err}
				return
			}
			if n := len(view.Chunks); n > 0 {
				if choices := view.Chunks[n-1].Choices; len(choices) > 0 && choices[0].Delta != nil {
					deltaCh <- choices[0].Delta.Content
				}
			}
		}
	}()

	model := ui.NewModel(prompt, deltaCh, resultCh, cancel)
	final, err := ui.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	if m, ok := final.(ui.Model); ok && m.Result().Err != nil {
		return m.Result().Err
	}
	return nil
}

func printSummary(c chat.ChatCompletion) {
	parts := []string{}
	if c.Model != "" {
		parts = append(parts, c.Model)
	}
	parts = append(parts,
		fmt.Sprintf("~%s completion tokens", humanize.Comma(int64(c.Usage.CompletionTokens))),
		fmt.Sprintf("~%s total tokens", humanize.Comma(int64(c.Usage.TotalTokens))),
	)
	if c.Metadata.ProcessingMS > 0 {
		parts = append(parts, fmt.Sprintf("%s ms server time", humanize.Comma(c.Metadata.ProcessingMS)))
	}
	if c.Metadata.RequestID != "" {
		parts = append(parts, "request "+c.Metadata.RequestID)
	}
	fmt.Fprintln(os.Stderr, summaryStyle.Render(strings.Join(parts, " | ")))
}

// describeAPIError adds classification context for common API failures.
func describeAPIError(err error) error {
	switch {
	case httpx.IsAuth(err):
		return fmt.Errorf("authentication failed (check your API key): %w", err)
	case httpx.IsRateLimit(err):
		return fmt.Errorf("rate limited, try again later: %w", err)
	default:
		return err
	}
}
