package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/runboard"
)

// BuildBackend converts the backend section into an SDK Backend.
func BuildBackend(cfg *Config) (runboard.Backend, error) {
	var opts []runboard.BackendOption

	if len(cfg.Backend.Headers) > 0 {
		opts = append(opts, runboard.WithHeaders(mapToKeyValuePairs(cfg.Backend.Headers)...))
	}

	if cfg.Backend.Timeout != 0 {
		opts = append(opts, runboard.WithTimeout(cfg.Backend.Timeout.Duration()))
	}

	be, err := runboard.NewBackend(cfg.Backend.URL, opts...)
	if err != nil {
		return runboard.Backend{}, fmt.Errorf("backend: %w", err)
	}
	return be, nil
}

// BuildOptions converts a validated configuration into SDK options.
//
// The logger is left to the caller.
func BuildOptions(cfg *Config) ([]runboard.Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	be, err := BuildBackend(cfg)
	if err != nil {
		return nil, err
	}

	return []runboard.Option{
		runboard.WithBackend(be),
		runboard.WithTitle(cfg.Title),
		runboard.WithPort(cfg.Port),
		runboard.WithPollingInterval(cfg.PollInterval.Duration()),
		runboard.WithLogLimit(cfg.LogLimit),
		runboard.WithStartLogDelay(cfg.StartLogDelay.Duration()),
		runboard.WithResumeDelay(cfg.ResumeDelay.Duration()),
	}, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
