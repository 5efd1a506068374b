// Package stream consumes the line-oriented body of a streaming chat
// completion response and folds the decoded chunks into a continuously
// updated composed completion.
package stream

import "strings"

// dataPrefix is the event-stream framing prefix; doneSentinel signals
// graceful termination of the whole stream.
const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// FrameKind classifies one raw line of the transport stream.
type FrameKind int

const (
	// FrameSkip marks a blank or whitespace-only line.
	FrameSkip FrameKind = iota
	// FrameDone marks the termination sentinel; the stream ends immediately.
	FrameDone
	// FramePayload marks candidate document content.
	FramePayload
)

// DecodeFrame strips the framing prefix when present and classifies the line.
// It has no side effects.
func DecodeFrame(line string) (string, FrameKind) {
	payload := strings.TrimPrefix(line, dataPrefix)
	if strings.TrimSpace(payload) == "" {
		return "", FrameSkip
	}
	if strings.TrimSpace(payload) == doneSentinel {
		return "", FrameDone
	}
	return payload, FramePayload
}
