// Package ui renders a live chat completion stream in the terminal.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/renatogalera/chatstream/pkg/chat"
)

// uiState represents the different states of the TUI.
type uiState int

const (
	stateWaiting uiState = iota
	stateStreaming
	stateDone
)

type (
	streamDeltaMsg struct{ delta string }
	streamDoneMsg  StreamResult
)

// StreamResult carries the finalized completion (or the terminal error) once
// the stream ends.
type StreamResult struct {
	Completion chat.ChatCompletion
	Err        error
}

var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	logoText = `CHATSTREAM`

	// Where the streamed answer is shown
	answerBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Margin(1, 1)

	infoLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Margin(0, 1).
			Italic(true)

	errorBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(1, 2).
			Margin(1, 1)
)

// Model is the Bubble Tea model for one streamed completion.
type Model struct {
	state   uiState
	spinner spinner.Model

	prompt  string
	content strings.Builder
	result  StreamResult

	deltaCh  <-chan string
	resultCh <-chan StreamResult
	cancel   context.CancelFunc

	width int
}

// NewModel builds a model fed by the given stream channels. cancel is invoked
// when the user quits mid-stream so the transport read unblocks promptly.
func NewModel(prompt string, deltaCh <-chan string, resultCh <-chan StreamResult, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		state:    stateWaiting,
		spinner:  s,
		prompt:   prompt,
		deltaCh:  deltaCh,
		resultCh: resultCh,
		cancel:   cancel,
		width:    80,
	}
}

// NewProgram creates a Bubble Tea program for the model.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForStream(m.deltaCh, m.resultCh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case streamDeltaMsg:
		m.state = stateStreaming
		m.content.WriteString(msg.delta)
		return m, waitForStream(m.deltaCh, m.resultCh)

	case streamDoneMsg:
		m.state = stateDone
		m.result = StreamResult(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(logoStyle.Render(logoText))
	b.WriteString("\n")
	b.WriteString(infoLineStyle.Render("> " + m.prompt))
	b.WriteString("\n")

	switch m.state {
	case stateWaiting:
		b.WriteString(fmt.Sprintf("\n %s Waiting for the first token...\n", m.spinner.View()))
	case stateStreaming:
		b.WriteString(answerBoxStyle.Width(m.width - 4).Render(m.content.String()))
		b.WriteString("\n")
		b.WriteString(infoLineStyle.Render("streaming... press q to cancel"))
	case stateDone:
		if m.result.Err != nil {
			b.WriteString(errorBoxStyle.Render(fmt.Sprintf("Stream error: %v", m.result.Err)))
			b.WriteString("\n")
		}
		if text := m.result.Completion.FirstContent(); text != "" {
			b.WriteString(answerBoxStyle.Width(m.width - 4).Render(text))
			b.WriteString("\n")
		}
		b.WriteString(infoLineStyle.Render(summaryLine(m.result.Completion)))
	}
	b.WriteString("\n")
	return b.String()
}

// Result returns the stream outcome after the program finishes.
func (m Model) Result() StreamResult { return m.result }

func summaryLine(c chat.ChatCompletion) string {
	parts := []string{}
	if c.Model != "" {
		parts = append(parts, c.Model)
	}
	parts = append(parts, fmt.Sprintf("~%s completion tokens", humanize.Comma(int64(c.Usage.CompletionTokens))))
	if c.Metadata.ProcessingMS > 0 {
		parts = append(parts, fmt.Sprintf("%s ms", humanize.Comma(c.Metadata.ProcessingMS)))
	}
	if c.Metadata.RequestID != "" {
		parts = append(parts, "request "+c.Metadata.RequestID)
	}
	return strings.Join(parts, " | ")
}

// waitForStream yields the next delta, or the final result once the delta
// channel is closed.
func waitForStream(deltaCh <-chan string, resultCh <-chan StreamResult) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-deltaCh
		if ok {
			return streamDeltaMsg{delta: delta}
		}
		return streamDoneMsg(<-resultCh)
	}
}
