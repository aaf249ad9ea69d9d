// Package backend provides the typed HTTP client for the download-automation
// backend that runboard watches and controls.
//
// This package is internal to runboard. The backend itself is an external
// service; this package only knows its five endpoints:
//
//   - GET /status: run state and counters ([RunStatus])
//   - GET /logs?limit=N: most recent log entries ([LogEntry])
//   - DELETE /logs: clear all log entries
//   - POST /start: start the job ([ActionResult])
//   - POST /stop: stop the job ([ActionResult])
//
// Failures are classified so callers can tell a transport problem
// ([ErrNetwork]) from a non-2xx response ([ErrHTTPStatus], [StatusError])
// and from a malformed body ([ErrDecode]). [ErrUnexpectedResult] is provided
// for callers that reject a 2xx action result they did not expect.
package backend
