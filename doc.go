// Package runboard provides a live dashboard for a long-running download
// job exposed over HTTP.
//
// The job service (the backend) reports whether it is running, how many
// links it has processed, and a log of recent attempts. Runboard polls it,
// renders the result, and lets the user start the job, stop it and clear
// its logs, either from a browser ([Board.Serve]) or from a terminal
// ([Board.Watch]).
//
// # Quick Start
//
//	be, _ := runboard.NewBackend("http://localhost:5000")
//	board, _ := runboard.New(runboard.WithBackend(be))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Serve(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Runboard uses the functional options pattern for configuration:
//
//	board, err := runboard.New(
//	    runboard.WithBackend(be),
//	    runboard.WithPollingInterval(5 * time.Second),
//	    runboard.WithLogLimit(200),
//	    runboard.WithPort(9090),
//	)
//
// The backend can also be configured with options:
//
//	be, err := runboard.NewBackend("https://jobs.internal",
//	    runboard.WithHeaders("Authorization", "Bearer token"),
//	    runboard.WithTimeout(10 * time.Second),
//	)
//
// # Polling
//
// Status and logs are fetched together once per cycle. A cycle never
// overlaps the previous one; a tick that lands while one is in flight is
// skipped. Polling only runs while someone is looking: a visible browser
// tab for Serve, a focused terminal for Watch. Coming back triggers a
// catch-up refresh shortly after.
//
// # Architecture
//
// Runboard consists of several internal packages (under internal/):
//
//   - internal/backend: HTTP client for the job service
//   - internal/controller: Refresh cycle, actions and view computation
//   - internal/poller: Pausable ticker scheduler
//   - internal/store: In-memory view with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/tui: Terminal dashboard
//   - internal/metrics: Prometheus instrumentation
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package runboard
