package runboard

import (
	"errors"
	"net/url"
	"time"
)

// Backend describes the job service the board talks to.
//
// Backend is immutable after creation via [NewBackend]. Getters return
// copies of mutable data (maps), so the value cannot be modified after
// construction.
type Backend struct {
	url     string
	headers map[string]string
	timeout time.Duration
}

// URL returns the backend base URL.
func (b Backend) URL() string {
	return b.url
}

// Headers returns a copy of the custom HTTP headers sent with every request.
// Returns nil if no custom headers are set.
func (b Backend) Headers() map[string]string {
	return copyMap(b.headers)
}

// Timeout returns the per-request timeout. Zero means requests are bounded
// only by their context.
func (b Backend) Timeout() time.Duration {
	return b.timeout
}

// NewBackend creates a [Backend] for the service at rawURL.
//
// The rawURL parameter must be an absolute http:// or https:// URL. Paths
// such as "/status" are resolved relative to it.
//
// Example:
//
//	be, err := runboard.NewBackend("http://localhost:5000",
//	    runboard.WithHeaders("Authorization", "Bearer token123"),
//	    runboard.WithTimeout(10 * time.Second),
//	)
func NewBackend(rawURL string, opts ...BackendOption) (Backend, error) {
	if rawURL == "" {
		return Backend{}, errors.New("backend URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Backend{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Backend{}, errors.New("URL must have a scheme (http:// or https://)")
	}
	if parsedURL.Host == "" {
		return Backend{}, errors.New("URL must have a host")
	}

	cfg := &backendConfig{
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Backend{}, err
		}
	}

	return Backend{
		url:     rawURL,
		headers: cfg.headers,
		timeout: cfg.timeout,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
