package backend

// Action result values reported by the backend's start and stop endpoints.
const (
	ActionStarted        = "started"
	ActionAlreadyRunning = "already_running"
	ActionStopped        = "stopped"
)

// Stats holds the job counters reported alongside the run state.
type Stats struct {
	TotalProcessed      int    `json:"total_processed"`
	SuccessfulDownloads int    `json:"successful_downloads"`
	FailedDownloads     int    `json:"failed_downloads"`
	CurrentLink         string `json:"current_link"`
}

// RunStatus is the payload of GET /status.
//
// It is replaced wholesale on each poll. Stats is nil when the backend does
// not report counters.
type RunStatus struct {
	Running bool   `json:"running"`
	Stats   *Stats `json:"stats,omitempty"`
}

// LogEntry is one record of the backend's download log.
//
// Proxy is nil when the download went out without a proxy and the backend
// reported null. Duration (seconds) and Attempt are optional.
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Proxy     *string  `json:"proxy"`
	Result    string   `json:"result"`
	Duration  *float64 `json:"duration,omitempty"`
	Attempt   *int     `json:"attempt,omitempty"`
}

// ActionResult is the payload of POST /start and POST /stop.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// logsResponse is the envelope of GET /logs.
type logsResponse struct {
	Logs []LogEntry `json:"logs"`
}
