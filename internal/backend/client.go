package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; a single backend host is polled every few seconds
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 4
	defaultMaxConnsPerHost     = 8
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Client is an HTTP client for the download-automation backend.
//
// Client applies an optional per-request timeout via context rather than a
// global client timeout. A zero timeout means requests are bounded only by
// the caller's context. Response bodies are limited to 1MB.
//
// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a backend [Client] for baseURL.
//
// headers are sent with every request (for example an Authorization header).
// timeout bounds each request; zero disables the per-request timeout.
//
// Connection pooling configuration:
//   - MaxIdleConns: 10 total idle connections
//   - MaxIdleConnsPerHost: 4 idle connections per host
//   - MaxConnsPerHost: 8 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewClient(baseURL string, headers map[string]string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: headers,
		timeout: timeout,
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the current [RunStatus].
func (c *Client) Status(ctx context.Context) (RunStatus, error) {
	var status RunStatus
	if err := c.do(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return RunStatus{}, err
	}
	return status, nil
}

// Logs fetches up to limit of the most recent log entries, in backend order.
// A limit of zero or less omits the query parameter.
func (c *Client) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	var resp logsResponse
	if err := c.do(ctx, http.MethodGet, "/logs", query, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// ClearLogs deletes all log entries on the backend.
func (c *Client) ClearLogs(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/logs", nil, nil)
}

// Start asks the backend to start the job.
//
// The returned [ActionResult] is passed through unchanged; interpreting
// values other than [ActionStarted] is left to the caller.
func (c *Client) Start(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	if err := c.do(ctx, http.MethodPost, "/start", nil, &result); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// Stop asks the backend to stop the job.
func (c *Client) Stop(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	if err := c.do(ctx, http.MethodPost, "/stop", nil, &result); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil client. After Close, the client
// remains usable but new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// do performs one request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("%w: %s %s: failed to read response body: %w", ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}
	return nil
}

// maxErrorMessageLength caps, in runes, a raw error body quoted in errors.
const maxErrorMessageLength = 200

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if detail, ok := payload.Detail.(string); ok && detail != "" {
			return detail
		}
	}

	msg := strings.TrimSpace(string(body))
	if runes := []rune(msg); len(runes) > maxErrorMessageLength {
		msg = string(runes[:maxErrorMessageLength]) + "..."
	}
	return msg
}
