package config

import (
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/runboard"
)

func TestBuildBackend(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{
			URL:     "https://jobs.example.com",
			Timeout: Duration(5 * time.Second),
			Headers: map[string]string{
				"Authorization": "Bearer token",
				"X-Team":        "ops",
			},
		},
	}

	be, err := BuildBackend(cfg)
	if err != nil {
		t.Fatalf("BuildBackend() error = %v", err)
	}

	if be.URL() != "https://jobs.example.com" {
		t.Errorf("URL() = %q, want %q", be.URL(), "https://jobs.example.com")
	}
	if be.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", be.Timeout())
	}
	headers := be.Headers()
	if headers["Authorization"] != "Bearer token" || headers["X-Team"] != "ops" {
		t.Errorf("Headers() = %v", headers)
	}
}

func TestBuildOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
title: Downloads
port: 9191
poll_interval: 2s
log_limit: 40
backend:
  url: http://localhost:5000
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	board, err := runboard.New(opts...)
	if err != nil {
		t.Fatalf("runboard.New() error = %v", err)
	}

	if board.Port() != 9191 {
		t.Errorf("Port() = %d, want 9191", board.Port())
	}
	if board.PollingInterval() != 2*time.Second {
		t.Errorf("PollingInterval() = %v, want 2s", board.PollingInterval())
	}
	if board.LogLimit() != 40 {
		t.Errorf("LogLimit() = %d, want 40", board.LogLimit())
	}
	if board.Backend().URL() != "http://localhost:5000" {
		t.Errorf("Backend().URL() = %q", board.Backend().URL())
	}
}

func TestBuildOptions_MissingBackend(t *testing.T) {
	_, err := BuildOptions(Default())
	if err == nil || !strings.Contains(err.Error(), "backend.url") {
		t.Errorf("BuildOptions() error = %v, want backend.url is required", err)
	}
}

func TestMapToKeyValuePairs_Sorted(t *testing.T) {
	got := mapToKeyValuePairs(map[string]string{"b": "2", "a": "1", "c": "3"})
	want := []string{"a", "1", "b", "2", "c", "3"}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pairs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
