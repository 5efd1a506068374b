package stream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocBuffer_MultiLineDocument(t *testing.T) {
	t.Parallel()
	var b docBuffer

	lines := []string{
		"{",
		`"choices":[{"index":0,"delta":{"content":"Hi"}}]`,
		"}",
	}
	for i, line := range lines {
		doc, complete := b.Accept(line)
		if i < len(lines)-1 {
			assert.False(t, complete, "line %d should not complete the document", i)
			assert.Empty(t, doc)
		} else {
			require.True(t, complete, "final line should complete the document")
			assert.True(t, json.Valid([]byte(doc)), "emitted document should be valid JSON: %q", doc)
		}
	}
	assert.False(t, b.Pending(), "buffer should reset after emission")
}

func TestDocBuffer_OneLineDocument(t *testing.T) {
	t.Parallel()
	var b docBuffer

	doc, complete := b.Accept(`{"id":"c1","choices":[]}`)
	require.True(t, complete)
	assert.True(t, json.Valid([]byte(doc)))
	assert.False(t, b.Pending())
}

func TestDocBuffer_BackToBackDocuments(t *testing.T) {
	t.Parallel()
	var b docBuffer

	for i := 0; i < 3; i++ {
		_, complete := b.Accept("{")
		require.False(t, complete)
		_, complete = b.Accept(`"n":` + string(rune('0'+i)))
		require.False(t, complete)
		doc, complete := b.Accept("}")
		require.True(t, complete, "iteration %d", i)
		assert.True(t, json.Valid([]byte(doc)))
	}
}

func TestDocBuffer_BracesInsideStrings(t *testing.T) {
	t.Parallel()
	var b docBuffer

	doc, complete := b.Accept(`{"content":"closing } and opening { inside"}`)
	require.True(t, complete)
	assert.True(t, json.Valid([]byte(doc)))
}

func TestDocBuffer_EscapedQuoteInsideString(t *testing.T) {
	t.Parallel()
	var b docBuffer

	doc, complete := b.Accept(`{"content":"a \" quote and a \\ backslash"}`)
	require.True(t, complete)
	assert.True(t, json.Valid([]byte(doc)))
}

func TestDocBuffer_StrayCloserFlushes(t *testing.T) {
	t.Parallel()
	var b docBuffer

	doc, complete := b.Accept("}")
	require.True(t, complete, "underflow should flush rather than wedge the buffer")
	assert.False(t, json.Valid([]byte(doc)), "flushed garbage should fail decode downstream")

	// The buffer must still work afterwards.
	doc, complete = b.Accept(`{"ok":true}`)
	require.True(t, complete)
	assert.True(t, json.Valid([]byte(doc)))
}

func TestDocBuffer_NestedObjects(t *testing.T) {
	t.Parallel()
	var b docBuffer

	lines := []string{
		"{",
		`"choices":[`,
		"{",
		`"delta":{"role":"assistant"}`,
		"}",
		"]",
		"}",
	}
	var emitted int
	for _, line := range lines {
		if _, complete := b.Accept(line); complete {
			emitted++
		}
	}
	assert.Equal(t, 1, emitted, "nested structure must emit exactly once, at depth zero")
}
