package chat

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Response header names used by the chat completions endpoint.
const (
	HeaderOrganization = "Openai-Organization"
	HeaderRequestID    = "X-Request-Id"
	HeaderProcessingMS = "Openai-Processing-Ms"
	HeaderAPIVersion   = "Openai-Version"
	HeaderModel        = "Openai-Model"
)

// Metadata carries the optional response headers attached to decoded units.
// Every field is independently optional; a zero Metadata means no recognized
// headers were present.
type Metadata struct {
	Organization string
	RequestID    string
	ProcessingMS int64
	APIVersion   string
	Model        string
}

// MetadataSetter is implemented by units that support header attachment.
type MetadataSetter interface {
	SetMetadata(Metadata)
}

// MetadataFromHeaders extracts the recognized response headers. A malformed
// processing-time value is logged and skipped; extraction never fails.
func MetadataFromHeaders(h http.Header, logger zerolog.Logger) Metadata {
	m := Metadata{
		Organization: h.Get(HeaderOrganization),
		RequestID:    h.Get(HeaderRequestID),
		APIVersion:   h.Get(HeaderAPIVersion),
		Model:        h.Get(HeaderModel),
	}
	if raw := h.Get(HeaderProcessingMS); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warn().Str("header", HeaderProcessingMS).Str("value", raw).
				Msg("Ignoring unparseable processing time header")
		} else {
			m.ProcessingMS = ms
		}
	}
	return m
}
