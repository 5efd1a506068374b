// Package httpx provides HTTP plumbing shared by the chat client: default
// client construction tuned for event-stream responses and the API error
// taxonomy for non-2xx replies.
package httpx

import "net/http"

// NewDefaultClient returns an HTTP client suitable for event-stream
// endpoints. Compression is disabled so the transport hands back raw bytes
// as they arrive; timeouts are governed by per-request contexts, never a
// client-wide deadline that would cut long streams short.
func NewDefaultClient() *http.Client {
	return &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			DisableCompression: true,
		},
	}
}
