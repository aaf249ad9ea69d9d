package runboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/runboard/dashboard"
	"github.com/jpalmerr/runboard/internal/backend"
	"github.com/jpalmerr/runboard/internal/controller"
	"github.com/jpalmerr/runboard/internal/metrics"
	"github.com/jpalmerr/runboard/internal/poller"
	"github.com/jpalmerr/runboard/internal/server"
	"github.com/jpalmerr/runboard/internal/store"
	"github.com/jpalmerr/runboard/internal/tui"
)

const (
	defaultPollingInterval = poller.DefaultInterval
	defaultLogLimit        = controller.DefaultLogLimit
	defaultStartLogDelay   = controller.DefaultStartLogDelay
	defaultResumeDelay     = poller.DefaultResumeDelay
	defaultPort            = 8080
)

// Board watches a single download job and lets its user start it, stop it
// and clear its logs.
//
// Board is created using [New] with functional options and run with either
// [Board.Serve] (web dashboard) or [Board.Watch] (terminal dashboard).
//
// The typical lifecycle is:
//
//	be, _ := runboard.NewBackend("http://localhost:5000")
//	board, err := runboard.New(runboard.WithBackend(be))
//	if err != nil {
//	    slog.Error("failed to create runboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Serve(ctx) // blocks until context cancelled
type Board struct {
	title           string
	backend         Backend
	pollingInterval time.Duration
	logLimit        int
	startLogDelay   time.Duration
	resumeDelay     time.Duration
	port            int
	logger          *slog.Logger
	viewCallbacks   []func(View)
}

// New creates a new [Board] with the given options.
//
// A backend must be configured via [WithBackend]. Other options have
// defaults:
//   - Polling interval: 3 seconds
//   - Log limit: 100 entries
//   - Start log delay: 2 seconds
//   - Resume delay: 300 milliseconds
//   - Port: 8080
//
// Returns an error if no backend is configured or if any option is invalid.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		pollingInterval: defaultPollingInterval,
		logLimit:        defaultLogLimit,
		startLogDelay:   defaultStartLogDelay,
		resumeDelay:     defaultResumeDelay,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.backend == nil {
		return nil, errors.New("a backend is required")
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:           cfg.title,
		backend:         *cfg.backend,
		pollingInterval: cfg.pollingInterval,
		logLimit:        cfg.logLimit,
		startLogDelay:   cfg.startLogDelay,
		resumeDelay:     cfg.resumeDelay,
		port:            cfg.port,
		logger:          logger,
		viewCallbacks:   cfg.viewCallbacks,
	}, nil
}

// Backend returns the configured backend.
func (b *Board) Backend() Backend {
	return b.backend
}

// Port returns the configured HTTP port for [Board.Serve].
func (b *Board) Port() int {
	return b.port
}

// PollingInterval returns the configured interval between refresh cycles.
func (b *Board) PollingInterval() time.Duration {
	return b.pollingInterval
}

// LogLimit returns the configured number of log entries shown.
func (b *Board) LogLimit() int {
	return b.logLimit
}

// session is the set of components shared by both surfaces.
type session struct {
	client *backend.Client
	store  *store.MemoryStore
	ctrl   *controller.Controller
	sched  *poller.Scheduler

	wg       sync.WaitGroup
	listener <-chan store.Dashboard
}

// newSession wires a backend client, store, controller and scheduler.
// The scheduler starts paused; the caller decides when polling runs.
func (b *Board) newSession(confirmer controller.Confirmer) *session {
	s := &session{
		client: backend.NewClient(b.backend.url, b.backend.headers, b.backend.timeout),
		store:  store.NewMemoryStore(),
	}

	s.ctrl = controller.New(s.client, s.store,
		controller.WithLogLimit(b.logLimit),
		controller.WithStartLogDelay(b.startLogDelay),
		controller.WithConfirmer(confirmer),
		controller.WithLogger(b.logger),
		controller.WithObserver(metrics.Observer{}),
	)

	s.sched = poller.NewScheduler(b.cycle(s.ctrl), b.pollingInterval, b.resumeDelay, b.logger)
	s.sched.Pause()

	if len(b.viewCallbacks) > 0 {
		s.listener = s.store.Listen()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for v := range s.listener {
				for _, cb := range b.viewCallbacks {
					invokeCallbackSafe(cb, v, b.logger)
				}
			}
		}()
	}

	return s
}

// cycle is one scheduled refresh. A tick that lands on a refresh still in
// flight is skipped quietly.
func (b *Board) cycle(ctrl *controller.Controller) poller.CycleFunc {
	return func(ctx context.Context) error {
		err := ctrl.Refresh(ctx)
		if errors.Is(err, controller.ErrRefreshInProgress) {
			b.logger.Debug("refresh skipped, previous cycle still running")
			return nil
		}
		return err
	}
}

// close stops polling, cancels pending delayed refreshes and drains the
// callback consumer.
func (s *session) close() {
	s.sched.Stop()
	s.ctrl.Close()
	if s.listener != nil {
		s.store.Unsubscribe(s.listener)
	}
	s.wg.Wait()
	s.client.Close()
}

// Serve runs the web dashboard until ctx is cancelled.
//
// The status and logs are refreshed once immediately. After that polling
// runs only while at least one browser tab has the dashboard open and
// visible: the first viewer resumes polling and the last one leaving
// pauses it.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (b *Board) Serve(ctx context.Context) error {
	b.logger.Info("runboard starting", "backend", b.backend.url)
	b.logger.Info("polling configured", "interval", b.pollingInterval.String())
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	s := b.newSession(controller.ContextConfirmer)
	s.store.OnViewersChanged(func(n int) {
		metrics.SetViewers(n)
		if n == 0 {
			s.sched.Pause()
		} else {
			s.sched.Resume()
		}
	})
	s.sched.Start(ctx)

	httpServer := server.NewServer(s.store, s.ctrl, b.port, dashboard.Assets, b.title, b.logger)
	if err := httpServer.Start(ctx); err != nil {
		s.close()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	s.close()
	b.logger.Info("runboard stopped")
	return nil
}

// Watch runs the terminal dashboard until the user quits or ctx is
// cancelled.
//
// Polling runs while the terminal has focus. Clearing logs asks for
// confirmation in the terminal.
func (b *Board) Watch(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	prompter := tui.NewPrompter()
	s := b.newSession(prompter)
	defer s.close()

	// listen before the snapshot so no revision falls in between
	updates := s.store.Listen()
	defer s.store.Unsubscribe(updates)

	model := tui.NewModel(ctx, b.title, s.ctrl, s.sched, s.store.Snapshot(), updates)

	// terminals without focus reporting never send a focus event, so start
	// out polling
	s.sched.Resume()
	s.sched.Start(ctx)

	return tui.Run(ctx, model, prompter)
}

// invokeCallbackSafe calls a view callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(cb func(View), v View, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("view callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"revision", v.Revision,
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(v)
}
