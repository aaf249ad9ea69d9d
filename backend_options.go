package runboard

import (
	"errors"
	"time"
)

// backendConfig holds mutable state during backend construction.
type backendConfig struct {
	headers map[string]string
	timeout time.Duration
}

// BackendOption is a function that configures a [Backend] during construction.
//
// Built-in options: [WithHeaders], [WithTimeout].
type BackendOption func(*backendConfig) error

// WithHeaders adds custom HTTP headers to every backend request.
//
// Use this for backends behind authentication. Accepts variadic key-value
// pairs; the number of arguments must be even.
//
// Example:
//
//	be, err := runboard.NewBackend(url,
//	    runboard.WithHeaders("Authorization", "Bearer token123"),
//	)
func WithHeaders(keyValues ...string) BackendOption {
	return func(cfg *backendConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout bounds every backend request.
//
// A request that does not complete in time fails like any other network
// error: the status shows "Error" and polling carries on. Without this
// option requests have no timeout of their own.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) BackendOption {
	return func(cfg *backendConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}
