package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/runboard/internal/backend"
)

var (
	// ErrRefreshInProgress is returned by [Controller.Refresh] when another
	// cycle still holds the refresh flag. Nothing was fetched.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrActionInProgress is returned when the same action is invoked again
	// before the previous invocation finished.
	ErrActionInProgress = errors.New("action already in progress")
)

// Action names, as reported to an [Observer].
const (
	ActionStart     = "start"
	ActionStop      = "stop"
	ActionClearLogs = "clear_logs"
)

// Backend is the subset of the backend API the controller drives.
// *backend.Client satisfies it.
type Backend interface {
	Status(ctx context.Context) (backend.RunStatus, error)
	Logs(ctx context.Context, limit int) ([]backend.LogEntry, error)
	ClearLogs(ctx context.Context) error
	Start(ctx context.Context) (backend.ActionResult, error)
	Stop(ctx context.Context) (backend.ActionResult, error)
}

// Renderer is the display surface. Implementations must be safe for
// concurrent use; status and logs are rendered from different goroutines
// within one cycle.
type Renderer interface {
	RenderStatus(StatusView)
	RenderLogs(LogsView)
	RenderControls(Controls)
	Notify(Notice)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Observer receives cycle and action outcomes, typically for metrics.
type Observer interface {
	CycleCompleted(d time.Duration, err error)
	CycleSkipped()
	ActionCompleted(action string, err error)
}

type nopObserver struct{}

func (nopObserver) CycleCompleted(time.Duration, error) {}
func (nopObserver) CycleSkipped()                       {}
func (nopObserver) ActionCompleted(string, error)       {}

type confirmedKey struct{}

// WithConfirmation marks ctx as carrying the user's confirmation for a
// destructive action. See [ContextConfirmer].
func WithConfirmation(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmedKey{}, true)
}

// ContextConfirmer confirms only when the context was marked with
// [WithConfirmation]. It suits surfaces where the prompt happened on the
// other side of a request, like the web dashboard.
var ContextConfirmer Confirmer = ConfirmFunc(func(ctx context.Context, _ string) (bool, error) {
	confirmed, _ := ctx.Value(confirmedKey{}).(bool)
	return confirmed, nil
})

// ClearLogsPrompt is the question asked before clearing logs.
const ClearLogsPrompt = "Are you sure you want to clear all logs?"

// Option configures a [Controller].
type Option func(*Controller)

// WithLogLimit sets how many log entries are requested and shown.
// Non-positive values are ignored.
func WithLogLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.logLimit = n
		}
	}
}

// WithStartLogDelay sets the delay between a successful start and the log
// refresh that follows it. Negative values are ignored.
func WithStartLogDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.startLogDelay = d
		}
	}
}

// WithConfirmer sets the confirmer consulted by [Controller.ClearLogs].
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Controller) {
		if confirmer != nil {
			c.confirmer = confirmer
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the observer notified of cycle and action outcomes.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller fetches job status and logs, renders them, and runs the
// start, stop and clear-logs actions.
//
// All methods are safe for concurrent use.
type Controller struct {
	backend       Backend
	renderer      Renderer
	confirmer     Confirmer
	observer      Observer
	logger        *slog.Logger
	logLimit      int
	startLogDelay time.Duration

	refreshing atomic.Bool
	starting   atomic.Bool
	stopping   atomic.Bool
	clearing   atomic.Bool

	mu       sync.Mutex
	controls Controls
	running  bool // last known, used to derive controls

	// delayed log refreshes
	ctx     context.Context
	cancel  context.CancelFunc
	timerMu sync.Mutex
	timers  map[*time.Timer]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// New creates a [Controller] driving b and rendering into r.
//
// Without [WithConfirmer], clearing logs is always declined unless the
// context was marked with [WithConfirmation].
func New(b Backend, r Renderer, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend:       b,
		renderer:      r,
		confirmer:     ContextConfirmer,
		observer:      nopObserver{},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		logLimit:      DefaultLogLimit,
		startLogDelay: DefaultStartLogDelay,
		controls:      DefaultControls(),
		ctx:           ctx,
		cancel:        cancel,
		timers:        make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LogLimit returns the configured log limit.
func (c *Controller) LogLimit() int {
	return c.logLimit
}

// Controls returns the current control state.
func (c *Controller) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controls
}

// Refreshing reports whether a polling cycle is in flight.
func (c *Controller) Refreshing() bool {
	return c.refreshing.Load()
}

// Refresh runs one polling cycle: status and logs are fetched concurrently
// and the refresh flag is held until both have finished.
//
// If a cycle is already in flight Refresh returns [ErrRefreshInProgress]
// without fetching. Fetch failures are rendered and also returned, joined.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		c.observer.CycleSkipped()
		return ErrRefreshInProgress
	}
	defer c.refreshing.Store(false)

	start := time.Now()
	var statusErr, logsErr error
	var g errgroup.Group
	g.Go(func() error {
		statusErr = c.RefreshStatus(ctx)
		return statusErr
	})
	g.Go(func() error {
		logsErr = c.RefreshLogs(ctx)
		return logsErr
	})
	_ = g.Wait()

	err := errors.Join(statusErr, logsErr)
	c.observer.CycleCompleted(time.Since(start), err)
	return err
}

// RefreshStatus fetches the run status and renders it.
//
// On failure the status is rendered with the error label and the controls
// are left as they were.
func (c *Controller) RefreshStatus(ctx context.Context) error {
	status, err := c.backend.Status(ctx)
	if err != nil {
		c.logger.Warn("status refresh failed", "error", err)
		c.renderer.RenderStatus(ErrorStatusView(err))
		return fmt.Errorf("refresh status: %w", err)
	}

	c.renderer.RenderStatus(NewStatusView(status))

	c.updateControls(func(ctl *Controls) {
		c.running = status.Running
		c.deriveControls(ctl)
	})
	return nil
}

// RefreshLogs fetches the most recent log entries and renders them.
func (c *Controller) RefreshLogs(ctx context.Context) error {
	entries, err := c.backend.Logs(ctx, c.logLimit)
	if err != nil {
		c.logger.Warn("logs refresh failed", "error", err)
		c.renderer.RenderLogs(ErrorLogsView(err))
		return fmt.Errorf("refresh logs: %w", err)
	}

	c.renderer.RenderLogs(NewLogsView(entries, c.logLimit))
	return nil
}

// Start asks the backend to start the job.
//
// "started" schedules a delayed log refresh. "already_running" raises a
// warning notice and is not an error. Anything else, or a request failure,
// raises an error notice and is returned. In every case the controls are
// then restored from the last known running state and a fresh status
// refresh settles the final state.
func (c *Controller) Start(ctx context.Context) error {
	if !c.starting.CompareAndSwap(false, true) {
		return ErrActionInProgress
	}

	c.updateControls(func(ctl *Controls) {
		ctl.StartEnabled = false
		ctl.StartLabel = LabelStarting
	})

	err := c.start(ctx)

	c.starting.Store(false)
	// restore from the last known state; the refresh below refines it
	c.updateControls(func(ctl *Controls) {
		c.deriveControls(ctl)
	})
	_ = c.RefreshStatus(ctx)

	c.observer.ActionCompleted(ActionStart, err)
	return err
}

func (c *Controller) start(ctx context.Context) error {
	result, err := c.backend.Start(ctx)
	if err != nil {
		c.logger.Error("start failed", "error", err)
		c.notify(NoticeError, "Failed to start: "+err.Error())
		return fmt.Errorf("start: %w", err)
	}

	switch result.Status {
	case backend.ActionStarted:
		c.logger.Info("job started")
		c.notify(NoticeInfo, messageOr(result.Message, "Job started"))
		c.scheduleLogRefresh(c.startLogDelay)
		return nil
	case backend.ActionAlreadyRunning:
		c.logger.Info("job already running")
		c.notify(NoticeWarning, messageOr(result.Message, "Job is already running"))
		return nil
	default:
		c.logger.Error("unexpected start result", "status", result.Status, "message", result.Message)
		c.notify(NoticeError, "Failed to start: "+messageOr(result.Message, unexpectedStatus(result.Status)))
		return fmt.Errorf("start: %w: %q", backend.ErrUnexpectedResult, result.Status)
	}
}

// Stop asks the backend to stop the job. Only "stopped" counts as success.
// The controls are restored and the status refreshed afterwards regardless
// of outcome.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.stopping.CompareAndSwap(false, true) {
		return ErrActionInProgress
	}

	c.updateControls(func(ctl *Controls) {
		ctl.StopEnabled = false
		ctl.StopLabel = LabelStopping
	})

	err := c.stop(ctx)

	c.stopping.Store(false)
	c.updateControls(func(ctl *Controls) {
		c.deriveControls(ctl)
	})
	_ = c.RefreshStatus(ctx)

	c.observer.ActionCompleted(ActionStop, err)
	return err
}

func (c *Controller) stop(ctx context.Context) error {
	result, err := c.backend.Stop(ctx)
	if err != nil {
		c.logger.Error("stop failed", "error", err)
		c.notify(NoticeError, "Failed to stop: "+err.Error())
		return fmt.Errorf("stop: %w", err)
	}

	if result.Status != backend.ActionStopped {
		c.logger.Error("unexpected stop result", "status", result.Status, "message", result.Message)
		c.notify(NoticeError, "Failed to stop: "+messageOr(result.Message, unexpectedStatus(result.Status)))
		return fmt.Errorf("stop: %w: %q", backend.ErrUnexpectedResult, result.Status)
	}

	c.logger.Info("job stopped")
	c.notify(NoticeInfo, messageOr(result.Message, "Job stopped"))
	return nil
}

// ClearLogs deletes all backend logs after the confirmer agrees.
//
// A declined confirmation sends no request and returns nil. On success the
// (now empty) logs are re-rendered. The clear control is re-enabled
// whatever the outcome.
func (c *Controller) ClearLogs(ctx context.Context) error {
	if !c.clearing.CompareAndSwap(false, true) {
		return ErrActionInProgress
	}
	defer c.clearing.Store(false)

	ok, err := c.confirmer.Confirm(ctx, ClearLogsPrompt)
	if err != nil {
		return fmt.Errorf("confirm clear logs: %w", err)
	}
	if !ok {
		c.logger.Debug("clear logs declined")
		return nil
	}

	c.updateControls(func(ctl *Controls) { ctl.ClearEnabled = false })
	defer c.updateControls(func(ctl *Controls) { ctl.ClearEnabled = true })

	err = c.clearLogs(ctx)
	c.observer.ActionCompleted(ActionClearLogs, err)
	return err
}

func (c *Controller) clearLogs(ctx context.Context) error {
	if err := c.backend.ClearLogs(ctx); err != nil {
		c.logger.Error("clear logs failed", "error", err)
		c.notify(NoticeError, "Failed to clear logs: "+err.Error())
		return fmt.Errorf("clear logs: %w", err)
	}

	c.logger.Info("logs cleared")
	c.notify(NoticeInfo, "Logs cleared")
	_ = c.RefreshLogs(ctx)
	return nil
}

// Close cancels pending delayed log refreshes and waits for any that are
// running. Close is idempotent.
func (c *Controller) Close() {
	c.timerMu.Lock()
	if !c.closed {
		c.closed = true
		for t := range c.timers {
			if t.Stop() {
				c.wg.Done()
			}
			delete(c.timers, t)
		}
		c.cancel()
	}
	c.timerMu.Unlock()

	c.wg.Wait()
}

// scheduleLogRefresh refreshes logs once after delay, against the
// controller's own context so it outlives the triggering request.
func (c *Controller) scheduleLogRefresh(delay time.Duration) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.closed {
		return
	}

	c.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		defer c.wg.Done()

		c.timerMu.Lock()
		delete(c.timers, t)
		c.timerMu.Unlock()

		_ = c.RefreshLogs(c.ctx)
	})
	c.timers[t] = struct{}{}
}

// pendingTimers reports how many delayed refreshes have not fired yet.
func (c *Controller) pendingTimers() int {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	return len(c.timers)
}

// updateControls applies fn under the lock and renders the result.
func (c *Controller) updateControls(fn func(*Controls)) {
	c.mu.Lock()
	fn(&c.controls)
	controls := c.controls
	c.mu.Unlock()

	c.renderer.RenderControls(controls)
}

// deriveControls sets exactly one of start/stop enabled from the last known
// running state. A control whose action is pending stays as the action left
// it. Called with c.mu held.
func (c *Controller) deriveControls(ctl *Controls) {
	if !c.starting.Load() {
		ctl.StartEnabled = !c.running
		ctl.StartLabel = LabelStart
	}
	if !c.stopping.Load() {
		ctl.StopEnabled = c.running
		ctl.StopLabel = LabelStop
	}
}

func (c *Controller) notify(level NoticeLevel, msg string) {
	c.renderer.Notify(Notice{Level: level, Message: msg})
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

func unexpectedStatus(status string) string {
	return fmt.Sprintf("unexpected status %q", status)
}
