package stream

import (
	"strings"

	"github.com/renatogalera/chatstream/pkg/chat"
)

// StreamingView is the value yielded per accepted chunk. Completion is a
// snapshot: later folds never mutate a view the caller already holds.
// Chunks is the ordered history of chunks accepted so far; callers must
// treat it as read-only.
type StreamingView struct {
	Completion chat.ChatCompletion
	Chunks     []chat.Chunk
}

// noIndex is the "no choice seen yet" sentinel; it never matches a real
// choice index, so the first real chunk always starts a new choice.
const noIndex = -1

// Aggregator folds streamed chunks into a running composed completion.
// It is not safe for concurrent use; the stream drives it from a single
// consumer.
type Aggregator struct {
	completion chat.ChatCompletion
	history    []chat.Chunk

	lastIndex int
	role      string
	content   strings.Builder
}

// NewAggregator seeds an aggregator with an empty completion shape provided
// by the caller.
func NewAggregator(seed chat.ChatCompletion) *Aggregator {
	return &Aggregator{completion: seed, lastIndex: noIndex}
}

// Fold applies one chunk. Chunks without choices, or whose first choice has
// no delta, are discarded with no observable effect (ok=false). Otherwise the
// chunk is appended to the history and an updated view is returned.
func (a *Aggregator) Fold(chunk chat.Chunk) (StreamingView, bool) {
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return StreamingView{}, false
	}
	first := chunk.Choices[0]

	if first.Index != a.lastIndex {
		// A new choice started: finalize the previous message, then open a
		// fresh one under the newly announced role.
		a.flush()
		a.role = first.Delta.Role
		a.completion.Choices = append(a.completion.Choices, chat.Choice{
			Index:   first.Index,
			Message: chat.Message{Role: a.role},
		})
		a.lastIndex = first.Index
	}

	if first.Delta.Content != "" {
		a.content.WriteString(first.Delta.Content)
		a.completion.Usage.CompletionTokens++
		a.completion.Usage.TotalTokens++
	}
	if first.FinishReason != "" {
		a.completion.Choices[len(a.completion.Choices)-1].FinishReason = first.FinishReason
	}
	if u := chunk.Usage; u != nil && u.PromptTokens > a.completion.Usage.PromptTokens {
		a.completion.Usage.PromptTokens = u.PromptTokens
	}
	if chunk.ID != "" {
		a.completion.ID = chunk.ID
	}
	if chunk.Model != "" {
		a.completion.Model = chunk.Model
	}
	if chunk.Created != 0 {
		a.completion.Created = chunk.Created
	}

	a.history = append(a.history, chunk)
	return a.view(), true
}

// Finalize flushes the in-progress message content after the source stream
// has ended.
func (a *Aggregator) Finalize() { a.flush() }

// Completion returns the current composed completion as a snapshot.
func (a *Aggregator) Completion() chat.ChatCompletion {
	return a.view().Completion
}

// flush assembles the pending content fragments into the last composed
// message. No-op before the first choice.
func (a *Aggregator) flush() {
	if a.lastIndex == noIndex || len(a.completion.Choices) == 0 {
		return
	}
	last := &a.completion.Choices[len(a.completion.Choices)-1]
	last.Message.Content += a.content.String()
	a.content.Reset()
}

func (a *Aggregator) view() StreamingView {
	snap := a.completion
	snap.Choices = append([]chat.Choice(nil), a.completion.Choices...)
	if n := len(snap.Choices); n > 0 && a.content.Len() > 0 {
		snap.Choices[n-1].Message.Content += a.content.String()
	}
	// Cap the history slice so a caller append cannot clobber future entries.
	return StreamingView{
		Completion: snap,
		Chunks:     a.history[:len(a.history):len(a.history)],
	}
}
