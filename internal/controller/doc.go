// Package controller keeps a rendered view of a download job consistent with
// its backend and exposes the start, stop and clear-logs actions.
//
// The package is split in two halves:
//
//   - view.go: pure functions turning backend payloads into [StatusView],
//     [LogsView] and log lines. No I/O, trivially testable.
//   - controller.go: [Controller], which fetches from a [Backend], computes
//     views and pushes them into a [Renderer]. Destructive actions are gated
//     by a [Confirmer].
//
// A polling cycle ([Controller.Refresh]) fetches status and logs concurrently
// and is guarded by a single flag: a cycle requested while another is in
// flight returns [ErrRefreshInProgress] without touching the backend.
//
// Scheduling lives in the poller package; the controller has no timers of
// its own beyond the delayed log refresh that follows a successful start.
package controller
