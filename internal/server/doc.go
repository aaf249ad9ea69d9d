// Package server provides the HTTP server for the runboard dashboard and API.
//
// This package is internal to runboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: "/api/view" for the current dashboard, plus action routes
//     for start, stop, refresh and clearing logs
//   - Server-Sent Events: Real-time updates at "/api/sse"; each open stream
//     counts as a viewer and keeps polling alive
//   - Operations: Prometheus metrics at "/metrics", liveness at "/healthz"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the runboard library should not need to interact with this
// package directly. The server is started automatically by [runboard.Board.Serve].
package server
