// Package mockbackend simulates the download job service in memory.
//
// It serves the same five routes as the real service so the dashboard, the
// CLI and the tests can run without it. A started job walks a link list on
// a ticker and appends one log entry per link.
package mockbackend
