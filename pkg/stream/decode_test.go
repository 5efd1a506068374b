package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChunk(t *testing.T) {
	t.Parallel()

	doc := `{"id":"chatcmpl-1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hi"}}]}`
	chunk, err := DecodeChunk([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-1", chunk.ID)
	require.Len(t, chunk.Choices, 1)
	require.NotNil(t, chunk.Choices[0].Delta)
	assert.Equal(t, "assistant", chunk.Choices[0].Delta.Role)
	assert.Equal(t, "Hi", chunk.Choices[0].Delta.Content)
}

func TestDecodeChunk_Malformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeChunk([]byte(`{"choices":`))
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr), "decode failures must be typed")
	assert.Equal(t, `{"choices":`, decodeErr.Doc)
	assert.Error(t, decodeErr.Unwrap())
}
