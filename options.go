package runboard

import (
	"errors"
	"log/slog"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title           string
	backend         *Backend
	pollingInterval time.Duration
	logLimit        int
	startLogDelay   time.Duration
	resumeDelay     time.Duration
	port            int
	logger          *slog.Logger
	viewCallbacks   []func(View)
}

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithBackend sets the job service to monitor. Required.
//
// Example:
//
//	be, _ := runboard.NewBackend("http://localhost:5000")
//	board, err := runboard.New(runboard.WithBackend(be))
func WithBackend(b Backend) Option {
	return func(cfg *boardConfig) error {
		if b.url == "" {
			return errors.New("backend must be created with NewBackend")
		}
		cfg.backend = &b
		return nil
	}
}

// WithPollingInterval sets how often status and logs are refreshed while
// someone is watching. Defaults to 3 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithLogLimit sets how many recent log entries are requested and shown.
// Defaults to 100.
//
// Returns an error if n is zero or negative.
func WithLogLimit(n int) Option {
	return func(cfg *boardConfig) error {
		if n <= 0 {
			return errors.New("log limit must be positive")
		}
		cfg.logLimit = n
		return nil
	}
}

// WithStartLogDelay sets how long after a successful start the logs are
// refreshed once more, so the first entries of the new run show up without
// waiting for the next tick. Defaults to 2 seconds.
//
// Returns an error if the duration is negative.
func WithStartLogDelay(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("start log delay cannot be negative")
		}
		cfg.startLogDelay = d
		return nil
	}
}

// WithResumeDelay sets the pause between a viewer coming back and the
// catch-up refresh. Defaults to 300 milliseconds.
//
// Returns an error if the duration is negative.
func WithResumeDelay(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("resume delay cannot be negative")
		}
		cfg.resumeDelay = d
		return nil
	}
}

// WithPort sets the HTTP port used by [Board.Serve].
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithViewCallback registers a function called with every new [View].
//
// Multiple callbacks may be registered; they execute in registration order
// from a single goroutine. Callbacks must be non-blocking. Panics within
// callbacks are recovered and logged.
//
// Example:
//
//	board, err := runboard.New(
//	    runboard.WithBackend(be),
//	    runboard.WithViewCallback(func(v runboard.View) {
//	        if v.Status.Label == runboard.LabelError {
//	            log.Printf("backend unreachable: %s", v.Status.Error)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithViewCallback(cb func(View)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.viewCallbacks = append(cfg.viewCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title shown in the browser tab, page header
// and terminal view. If not specified, defaults to "Runboard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}
