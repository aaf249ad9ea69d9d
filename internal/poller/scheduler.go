package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Default timings.
const (
	DefaultInterval    = 3 * time.Second
	DefaultResumeDelay = 300 * time.Millisecond
)

// CycleFunc runs one polling cycle.
//
// The scheduler does not serialize cycles: each tick starts the function in
// its own goroutine, so implementations guard against overlap themselves
// (returning an error for a skipped cycle is fine; it is only logged).
type CycleFunc func(ctx context.Context) error

// Scheduler runs a [CycleFunc] on a fixed interval with a pausable ticker.
//
// Lifecycle:
//
//   - [Scheduler.Start] runs one cycle immediately, then one per tick.
//   - [Scheduler.Pause] cancels the ticker and any pending resume cycle.
//     Cycles already running continue against the base context.
//   - [Scheduler.Resume] restarts the ticker and runs one extra cycle after
//     the resume delay.
//   - [Scheduler.Stop] cancels everything, including the base context, and
//     waits for all goroutines.
//
// All lifecycle methods are idempotent and safe for concurrent use.
type Scheduler struct {
	cycle       CycleFunc
	interval    time.Duration
	resumeDelay time.Duration
	logger      *slog.Logger

	ctx    context.Context // base context for cycles
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	started     bool
	stopped     bool
	paused      bool
	loopCancel  context.CancelFunc // non-nil iff the ticker loop is running
	resumeTimer *time.Timer

	cycles atomic.Uint64
	panics atomic.Uint64
}

// NewScheduler creates a [Scheduler].
//
// Parameters:
//   - cycle: Function run on every tick
//   - interval: Time between ticks; non-positive uses [DefaultInterval]
//   - resumeDelay: Delay before the out-of-band cycle on resume; negative uses [DefaultResumeDelay]
//   - logger: Logger for scheduler events (panic recovery, cycle errors)
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(cycle CycleFunc, interval, resumeDelay time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if resumeDelay < 0 {
		resumeDelay = DefaultResumeDelay
	}
	return &Scheduler{
		cycle:       cycle,
		interval:    interval,
		resumeDelay: resumeDelay,
		logger:      logger,
	}
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start runs one cycle immediately and begins ticking in the background.
//
// If the scheduler was paused before Start, only the immediate cycle runs;
// ticking begins on [Scheduler.Resume].
//
// If ctx is nil, context.Background() is used as the parent context.
// Cancelling ctx stops ticking and cancels in-flight cycles.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.runCycle()
	if !s.paused {
		s.startLoopLocked()
	}
}

// Pause cancels the ticker and any pending resume cycle. Cycles already in
// flight are left to finish.
//
// Pause may be called before Start. Pausing a paused scheduler is a no-op.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.paused {
		return
	}
	s.paused = true
	s.stopLoopLocked()
	s.logger.Debug("polling paused")
}

// Resume restarts the ticker and schedules one out-of-band cycle after the
// resume delay. Resuming a running scheduler is a no-op.
//
// Before Start, Resume only clears the paused state.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || !s.paused {
		return
	}
	s.paused = false
	if !s.started {
		return
	}

	s.startLoopLocked()

	s.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(s.resumeDelay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		if s.resumeTimer == timer {
			s.resumeTimer = nil
		}
		s.mu.Unlock()

		s.execute()
	})
	s.resumeTimer = timer
	s.logger.Debug("polling resumed")
}

// Active reports whether the ticker is running: started, not paused and
// not stopped.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopCancel != nil
}

// Paused reports whether the scheduler is paused.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Cycles returns how many cycles have been run, including ones that
// returned an error or panicked.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles.Load()
}

// Panics returns how many cycles panicked.
func (s *Scheduler) Panics() uint64 {
	return s.panics.Load()
}

// Stop halts the scheduler and waits for all goroutines to complete.
//
// Stop cancels the ticker, any pending resume cycle and the base context,
// then blocks until every in-flight cycle has returned.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		s.stopLoopLocked()
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// startLoopLocked starts the ticker goroutine. Called with s.mu held.
func (s *Scheduler) startLoopLocked() {
	if s.loopCancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(s.ctx)
	s.loopCancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				// a tick can race a Pause; don't start work after it
				if loopCtx.Err() == nil {
					s.runCycle()
				}
				s.mu.Unlock()
			}
		}
	}()
}

// stopLoopLocked cancels the ticker goroutine and any pending resume cycle.
// Called with s.mu held.
func (s *Scheduler) stopLoopLocked() {
	if s.loopCancel != nil {
		s.loopCancel()
		s.loopCancel = nil
	}
	if s.resumeTimer != nil {
		if s.resumeTimer.Stop() {
			s.wg.Done()
		}
		s.resumeTimer = nil
	}
}

// runCycle starts one cycle in its own goroutine. Called with s.mu held.
func (s *Scheduler) runCycle() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute()
	}()
}

// execute calls the cycle function with panic recovery.
// If the cycle panics, the full stack trace is logged with a correlation ID
// and the scheduler keeps running.
func (s *Scheduler) execute() {
	if s.ctx.Err() != nil {
		return
	}
	s.cycles.Add(1)

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()
			s.panics.Add(1)

			s.logger.Error("polling cycle panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)
		}
	}()

	if err := s.cycle(s.ctx); err != nil {
		s.logger.Debug("polling cycle finished with error", "error", err)
	}
}
