package httpx_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/chatstream/pkg/httpx"
)

func TestParseAPIError_Envelope(t *testing.T) {
	t.Parallel()
	body := []byte(`{"error":{"message":"invalid api key","type":"invalid_request_error","code":"invalid_api_key"}}`)

	err := httpx.ParseAPIError(http.StatusUnauthorized, body, "req-1")
	assert.Equal(t, "invalid api key", err.Message)
	assert.Equal(t, "invalid_request_error", err.Type)
	assert.Equal(t, "invalid_api_key", err.Code)
	assert.Contains(t, err.Error(), "req-1")
	assert.True(t, httpx.IsAuth(err))
	assert.False(t, httpx.IsRateLimit(err))
}

func TestParseAPIError_UnstructuredBody(t *testing.T) {
	t.Parallel()
	err := httpx.ParseAPIError(http.StatusServiceUnavailable, []byte("  oops  \n"), "")
	assert.Equal(t, "oops", err.Message)
	assert.Contains(t, err.Error(), "503")
}

func TestAsAPIError_Wrapped(t *testing.T) {
	t.Parallel()
	base := httpx.ParseAPIError(http.StatusTooManyRequests, nil, "")
	wrapped := fmt.Errorf("request failed: %w", base)

	got, ok := httpx.AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, got.StatusCode)
	assert.True(t, httpx.IsRateLimit(wrapped))
}
