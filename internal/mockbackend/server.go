package mockbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jpalmerr/runboard/internal/backend"
)

// timestampLayout matches what the real service writes: naive UTC ISO 8601.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Config controls the simulation.
type Config struct {
	// Links is the list a run walks through. Defaults to DefaultLinks(20).
	Links []string

	// Proxies are picked at random per link. An empty list sends every
	// link out without a proxy (logged as null). "direct" is a valid entry.
	Proxies []string

	// Step is the time spent per link. Defaults to one second.
	Step time.Duration

	// FailRate is the probability in [0,1] that a link fails.
	FailRate float64

	// Seed seeds the random source; zero uses the current time.
	Seed int64
}

// DefaultLinks returns n placeholder download links.
func DefaultLinks(n int) []string {
	links := make([]string, n)
	for i := range links {
		links[i] = fmt.Sprintf("https://downloads.example.com/files/%04d/archive-part-%02d.zip", 1000+i, i+1)
	}
	return links
}

// DefaultProxies is a small proxy pool that includes direct connections.
var DefaultProxies = []string{
	"http://10.0.0.11:3128",
	"http://10.0.0.12:3128",
	"socks5://10.0.0.20:1080",
	"direct",
}

// Server is an in-memory job service.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *chi.Mux

	mu      sync.Mutex
	rng     *rand.Rand
	running bool
	next    int
	stats   backend.Stats
	logs    []backend.LogEntry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	now     func() time.Time
}

// New creates a Server with cfg. Zero fields take their defaults.
func New(cfg Config, logger *slog.Logger) *Server {
	if len(cfg.Links) == 0 {
		cfg.Links = DefaultLinks(20)
	}
	if cfg.Step <= 0 {
		cfg.Step = time.Second
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: chi.NewRouter(),
		rng:    rand.New(rand.NewSource(seed)),
		logs:   []backend.LogEntry{},
		now:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/status", s.handleStatus)
	s.router.Get("/logs", s.handleLogs)
	s.router.Delete("/logs", s.handleClearLogs)

	// the real service exposes start and stop as GET; accept both
	s.router.Get("/start", s.handleStart)
	s.router.Post("/start", s.handleStart)
	s.router.Get("/stop", s.handleStop)
	s.router.Post("/stop", s.handleStop)
}

// Handler returns the HTTP handler serving the job routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Running reports whether a run is in progress.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close stops any run and waits for it to finish.
func (s *Server) Close() {
	s.stopRun()
	s.wg.Wait()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := backend.RunStatus{Running: s.running}
	stats := s.stats
	status.Stats = &stats
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	s.mu.Lock()
	entries := s.logs
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := append([]backend.LogEntry(nil), entries...)
	s.mu.Unlock()

	if out == nil {
		out = []backend.LogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string][]backend.LogEntry{"logs": out})
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.logs)
	s.logs = []backend.LogEntry{}
	s.mu.Unlock()

	s.logger.Info("logs cleared", "entries", n)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, backend.ActionResult{Status: backend.ActionAlreadyRunning, Message: "Job is already running"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.next = 0
	s.stats = backend.Stats{}
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx)

	s.logger.Info("job started", "links", len(s.cfg.Links))
	writeJSON(w, http.StatusOK, backend.ActionResult{Status: backend.ActionStarted, Message: "Job started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.stopRun()
	s.logger.Info("job stopped")
	writeJSON(w, http.StatusOK, backend.ActionResult{Status: backend.ActionStopped, Message: "Job stopped"})
}

// stopRun ends the current run. Stopping an idle job is not an error.
func (s *Server) stopRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
	s.stats.CurrentLink = ""
}

// run processes one link per step until the list ends or ctx is cancelled.
func (s *Server) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Step)
	defer ticker.Stop()

	s.mu.Lock()
	s.stats.CurrentLink = s.cfg.Links[0]
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := s.step(ctx); done {
				return
			}
		}
	}
}

// step finishes the current link and moves to the next. It reports whether
// the run has ended.
func (s *Server) step(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a Stop may have landed between the tick and the lock
	if ctx.Err() != nil {
		return true
	}

	link := s.cfg.Links[s.next]
	entry := s.attemptLocked(link)
	s.logs = append(s.logs, entry)
	s.stats.TotalProcessed++
	if entry.Result == "success" {
		s.stats.SuccessfulDownloads++
	} else {
		s.stats.FailedDownloads++
	}

	s.next++
	if s.next >= len(s.cfg.Links) {
		s.running = false
		s.stats.CurrentLink = ""
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.logger.Info("job finished", "processed", s.stats.TotalProcessed)
		return true
	}
	s.stats.CurrentLink = s.cfg.Links[s.next]
	return false
}

// attemptLocked builds the log entry for one simulated download.
func (s *Server) attemptLocked(link string) backend.LogEntry {
	entry := backend.LogEntry{
		Timestamp: s.now().UTC().Format(timestampLayout),
		URL:       link,
		Result:    "success",
	}

	if len(s.cfg.Proxies) > 0 {
		proxy := s.cfg.Proxies[s.rng.Intn(len(s.cfg.Proxies))]
		entry.Proxy = &proxy
	}

	duration := float64(s.rng.Intn(9000)+500) / 1000
	entry.Duration = &duration

	attempt := 1
	if s.rng.Float64() < s.cfg.FailRate {
		attempt = s.rng.Intn(3) + 1
		entry.Result = "fail: Timeout 45000ms exceeded"
	}
	entry.Attempt = &attempt

	return entry
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
