package mockbackend

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jpalmerr/runboard/internal/backend"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg Config) (*Server, *backend.Client) {
	t.Helper()
	mock := New(cfg, testLogger())
	ts := httptest.NewServer(mock.Handler())
	client := backend.NewClient(ts.URL, nil, 0)
	t.Cleanup(func() {
		mock.Close()
		ts.Close()
		client.Close()
	})
	return mock, client
}

// waitFor polls cond until it is true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestServer_IdleStatus(t *testing.T) {
	_, client := newTestServer(t, Config{Seed: 1})

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Running {
		t.Error("Running = true, want false")
	}
	if status.Stats == nil {
		t.Fatal("Stats = nil, want counters")
	}
	if status.Stats.TotalProcessed != 0 {
		t.Errorf("TotalProcessed = %d, want 0", status.Stats.TotalProcessed)
	}

	logs, err := client.Logs(context.Background(), 100)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}
}

func TestServer_RunToCompletion(t *testing.T) {
	links := DefaultLinks(3)
	mock, client := newTestServer(t, Config{Links: links, Step: 10 * time.Millisecond, Seed: 1})
	ctx := context.Background()

	result, err := client.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if result.Status != backend.ActionStarted {
		t.Errorf("Status = %q, want %q", result.Status, backend.ActionStarted)
	}

	waitFor(t, 2*time.Second, func() bool { return !mock.Running() })

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Stats.TotalProcessed != 3 || status.Stats.SuccessfulDownloads != 3 {
		t.Errorf("stats = %+v, want 3 processed, 3 successful", *status.Stats)
	}
	if status.Stats.CurrentLink != "" {
		t.Errorf("CurrentLink = %q, want empty after the run", status.Stats.CurrentLink)
	}

	logs, err := client.Logs(ctx, 0)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("len(logs) = %d, want 3", len(logs))
	}
	for i, entry := range logs {
		if entry.URL != links[i] {
			t.Errorf("logs[%d].URL = %q, want %q", i, entry.URL, links[i])
		}
		if entry.Proxy != nil {
			t.Errorf("logs[%d].Proxy = %q, want nil without a proxy pool", i, *entry.Proxy)
		}
		if _, err := time.Parse(timestampLayout, entry.Timestamp); err != nil {
			t.Errorf("logs[%d].Timestamp = %q: %v", i, entry.Timestamp, err)
		}
	}
}

func TestServer_AlreadyRunning(t *testing.T) {
	_, client := newTestServer(t, Config{Step: time.Hour, Seed: 1})
	ctx := context.Background()

	if _, err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	result, err := client.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if result.Status != backend.ActionAlreadyRunning {
		t.Errorf("Status = %q, want %q", result.Status, backend.ActionAlreadyRunning)
	}
}

func TestServer_Stop(t *testing.T) {
	mock, client := newTestServer(t, Config{Step: time.Hour, Seed: 1})
	ctx := context.Background()

	if _, err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	status, _ := client.Status(ctx)
	if !status.Running || status.Stats.CurrentLink == "" {
		t.Errorf("status = %+v, want running with a current link", status)
	}

	result, err := client.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if result.Status != backend.ActionStopped {
		t.Errorf("Status = %q, want %q", result.Status, backend.ActionStopped)
	}
	if mock.Running() {
		t.Error("Running() = true after stop")
	}

	// stopping an idle job still reports stopped
	result, err = client.Stop(ctx)
	if err != nil || result.Status != backend.ActionStopped {
		t.Errorf("second Stop() = %+v, %v", result, err)
	}
}

func TestServer_LogsLimitAndClear(t *testing.T) {
	mock, client := newTestServer(t, Config{
		Links:    DefaultLinks(5),
		Proxies:  []string{"direct"},
		Step:     5 * time.Millisecond,
		FailRate: 1,
		Seed:     1,
	})
	ctx := context.Background()

	if _, err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return !mock.Running() })

	logs, err := client.Logs(ctx, 2)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	// the most recent entries
	if logs[1].URL != DefaultLinks(5)[4] {
		t.Errorf("logs[1].URL = %q, want the last link", logs[1].URL)
	}
	if logs[0].Proxy == nil || *logs[0].Proxy != "direct" {
		t.Errorf("Proxy = %v, want direct", logs[0].Proxy)
	}
	if logs[0].Result == "success" {
		t.Error("Result = success, want a failure with FailRate 1")
	}

	status, _ := client.Status(ctx)
	if status.Stats.FailedDownloads != 5 {
		t.Errorf("FailedDownloads = %d, want 5", status.Stats.FailedDownloads)
	}

	if err := client.ClearLogs(ctx); err != nil {
		t.Fatalf("ClearLogs() error = %v", err)
	}
	logs, _ = client.Logs(ctx, 0)
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d after clear, want 0", len(logs))
	}
}

func TestServer_GetStartAndStop(t *testing.T) {
	mock, _ := newTestServer(t, Config{Step: time.Hour, Seed: 1})
	h := mock.Handler()

	for _, path := range []string{"/start", "/stop"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestServer_InvalidLimit(t *testing.T) {
	mock, _ := newTestServer(t, Config{Seed: 1})

	rec := httptest.NewRecorder()
	mock.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
