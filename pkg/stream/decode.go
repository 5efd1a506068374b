package stream

import (
	"encoding/json"
	"fmt"

	"github.com/renatogalera/chatstream/pkg/chat"
)

// DecodeError reports a document that could not be decoded into a chunk.
// The stream loop drops the unit and continues; the error type exists so the
// best-effort policy is visible in the decode signature rather than hidden
// behind a swallowed failure.
type DecodeError struct {
	Doc string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode chunk: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeChunk deserializes one complete document into a typed chunk.
func DecodeChunk(doc []byte) (chat.Chunk, error) {
	var c chat.Chunk
	if err := json.Unmarshal(doc, &c); err != nil {
		return chat.Chunk{}, &DecodeError{Doc: string(doc), Err: err}
	}
	return c, nil
}
