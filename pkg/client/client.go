// Package client executes chat completion requests against an
// OpenAI-compatible endpoint, in both single-shot and streaming form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/renatogalera/chatstream/pkg/chat"
	"github.com/renatogalera/chatstream/pkg/httpx"
	"github.com/renatogalera/chatstream/pkg/stream"
)

const (
	// DefaultBaseURL targets the public OpenAI endpoint; override via
	// WithBaseURL for compatible providers.
	DefaultBaseURL = "https://api.openai.com/v1"

	completionsPath = "/chat/completions"
)

// Client talks to a chat completions endpoint. The zero value is not usable;
// construct with New.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	organization string
	logger       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithOrganization sets the organization sent with each request.
func WithOrganization(org string) Option {
	return func(c *Client) { c.organization = org }
}

// WithLogger sets the logger used for non-fatal diagnostics. Default is a
// no-op logger, keeping the library silent unless configured.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: httpx.NewDefaultClient(),
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChatCompletionStream starts a streaming completion. Transport
// failures (connection errors, non-2xx status) surface here as hard errors;
// once a stream is returned, everything inside it is best-effort.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req chat.Request) (*stream.Stream, error) {
	req.Stream = true
	resp, err := c.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return nil, err
	}
	seed := chat.ChatCompletion{}
	return stream.New(ctx, resp.Body, resp.Header, seed, stream.WithLogger(c.logger)), nil
}

// CreateChatCompletion performs a single-shot completion.
func (c *Client) CreateChatCompletion(ctx context.Context, req chat.Request) (chat.ChatCompletion, error) {
	req.Stream = false
	resp, err := c.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return chat.ChatCompletion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chat.ChatCompletion{}, fmt.Errorf("read response body: %w", err)
	}
	var completion chat.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return chat.ChatCompletion{}, fmt.Errorf("decode completion: %w", err)
	}
	completion.SetMetadata(chat.MetadataFromHeaders(resp.Header, c.logger))
	return completion, nil
}

// do executes one request and verifies the status; the caller owns the
// returned body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream, application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.organization != "" {
		httpReq.Header.Set(chat.HeaderOrganization, c.organization)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()
		return nil, httpx.ParseAPIError(resp.StatusCode, body, resp.Header.Get(chat.HeaderRequestID))
	}
	return resp, nil
}
