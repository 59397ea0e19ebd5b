// Package qdrant is a client for the Qdrant vector database HTTP API.
//
// The client implements [vecdb.Store], so the agent can run against a
// remote Qdrant deployment or the in-memory store interchangeably.
//
// Example:
//
//	client := qdrant.NewClient("http://localhost:6333")
//	client := qdrant.NewClient(url, qdrant.WithAPIKey("..."), qdrant.WithTimeout(10*time.Second))
//
// The client performs no retries of its own: failures are returned with
// enough classification (see [Error]) for the caller's retry policy.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vectl/vectl/pkg/vecdb"
)

const (
	// DefaultBaseURL is the default Qdrant server URL.
	DefaultBaseURL = "http://localhost:6333"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second
)

// Client is a Qdrant HTTP API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ vecdb.Store = (*Client)(nil)

// clientConfig holds the client configuration.
type clientConfig struct {
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// WithAPIKey sets the api-key header for Qdrant Cloud deployments.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Ignored if WithHTTPClient
// is also used.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// NewClient creates a Qdrant client for the given base URL.
// An empty URL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := &clientConfig{timeout: DefaultTimeout}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.apiKey,
		http:    cfg.httpClient,
	}
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the common Qdrant response wrapper.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"` // "ok" or {"error": "..."}
	Time   float64         `json:"time"`
}

// do performs a single request and decodes the result envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Msg: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseError(data, resp.StatusCode)
	}

	if out != nil {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}
