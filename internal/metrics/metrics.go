// Package metrics exposes runboard's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "runboard"

var (
	// polling metrics
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Total number of completed polling cycles by outcome",
		},
		[]string{"outcome"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Polling cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	cyclesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_skipped_total",
			Help:      "Polling cycles skipped because the previous one was still in flight",
		},
	)

	// action metrics
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of start/stop/clear actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	// dashboard metrics
	viewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_viewers",
			Help:      "Number of connected dashboard viewers",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Observer records controller outcomes. It satisfies controller.Observer.
type Observer struct{}

// CycleCompleted records a finished polling cycle.
func (Observer) CycleCompleted(d time.Duration, err error) {
	cyclesTotal.WithLabelValues(outcome(err)).Inc()
	cycleDuration.Observe(d.Seconds())
}

// CycleSkipped records a cycle skipped due to overlap.
func (Observer) CycleSkipped() {
	cyclesSkipped.Inc()
}

// ActionCompleted records a start, stop or clear-logs outcome.
func (Observer) ActionCompleted(action string, err error) {
	actionsTotal.WithLabelValues(action, outcome(err)).Inc()
}

// SetViewers sets the number of connected dashboard viewers.
func SetViewers(n int) {
	viewers.Set(float64(n))
}

// unmatchedPath labels requests no route matched.
const unmatchedPath = "unmatched"

// Middleware records HTTP request metrics. The path label is the matched
// route pattern, or "unmatched" when no route matched.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// SSE streams live for the whole session; counting them here would
		// only skew the duration histogram
		if r.Header.Get("Accept") == "text/event-stream" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// raw paths of unmatched requests would grow the label set without bound
		path := r.Pattern
		if path == "" {
			path = unmatchedPath
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
