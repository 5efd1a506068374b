package chat_test

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/renatogalera/chatstream/pkg/chat"
)

func TestMetadataFromHeaders_AllPresent(t *testing.T) {
	t.Parallel()
	h := http.Header{}
	h.Set("Openai-Organization", "org-1")
	h.Set("X-Request-Id", "req-1")
	h.Set("Openai-Processing-Ms", "1234")
	h.Set("Openai-Version", "2020-10-01")
	h.Set("Openai-Model", "gpt-4o-mini")

	m := chat.MetadataFromHeaders(h, zerolog.Nop())
	assert.Equal(t, "org-1", m.Organization)
	assert.Equal(t, "req-1", m.RequestID)
	assert.Equal(t, int64(1234), m.ProcessingMS)
	assert.Equal(t, "2020-10-01", m.APIVersion)
	assert.Equal(t, "gpt-4o-mini", m.Model)
}

func TestMetadataFromHeaders_RequestIDOnly(t *testing.T) {
	t.Parallel()
	h := http.Header{}
	h.Set("X-Request-ID", "abc123")

	m := chat.MetadataFromHeaders(h, zerolog.Nop())
	assert.Equal(t, "abc123", m.RequestID)
	assert.Empty(t, m.Organization)
	assert.Zero(t, m.ProcessingMS)
	assert.Empty(t, m.APIVersion)
	assert.Empty(t, m.Model)
}

func TestMetadataFromHeaders_BadProcessingTime(t *testing.T) {
	t.Parallel()
	h := http.Header{}
	h.Set("Openai-Processing-Ms", "soon")
	h.Set("Openai-Model", "gpt-4o-mini")

	m := chat.MetadataFromHeaders(h, zerolog.Nop())
	assert.Zero(t, m.ProcessingMS, "unparseable value is skipped, never fatal")
	assert.Equal(t, "gpt-4o-mini", m.Model, "remaining metadata is still attached")
}

func TestSetMetadata(t *testing.T) {
	t.Parallel()
	m := chat.Metadata{RequestID: "r"}

	var chunk chat.Chunk
	chunk.SetMetadata(m)
	assert.Equal(t, "r", chunk.Metadata.RequestID)

	var completion chat.ChatCompletion
	completion.SetMetadata(m)
	assert.Equal(t, "r", completion.Metadata.RequestID)

	// Both units support attachment through the same interface.
	var _ chat.MetadataSetter = &chunk
	var _ chat.MetadataSetter = &completion
}
