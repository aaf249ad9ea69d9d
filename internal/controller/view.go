package controller

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/runboard/internal/backend"
)

// Defaults and display constants.
const (
	DefaultLogLimit      = 100
	DefaultStartLogDelay = 2 * time.Second

	// MaxURLLength is the number of characters of a log URL shown before it
	// is truncated with an ellipsis.
	MaxURLLength = 50

	TimestampLayout = "2006-01-02 15:04:05"
	LogsPlaceholder = "No logs yet"
)

// Status labels.
const (
	LabelRunning = "Running"
	LabelIdle    = "Idle"
	LabelError   = "Error"
)

// Control labels.
const (
	LabelStart    = "Start"
	LabelStarting = "Starting..."
	LabelStop     = "Stop"
	LabelStopping = "Stopping..."
)

// StatusView is the rendered form of a [backend.RunStatus].
type StatusView struct {
	Running         bool   `json:"running"`
	Label           string `json:"label"`
	TotalProcessed  int    `json:"total_processed"`
	Successful      int    `json:"successful"`
	Failed          int    `json:"failed"`
	SuccessRate     int    `json:"success_rate"`
	CurrentLink     string `json:"current_link,omitempty"`
	ShowCurrentLink bool   `json:"show_current_link"`
	Error           string `json:"error,omitempty"`
}

// LogsView is the rendered form of a log listing.
//
// Exactly one of Lines, Placeholder or Error carries content.
type LogsView struct {
	Lines       []string `json:"lines"`
	Placeholder string   `json:"placeholder,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Controls is the enabled state and label of each action control.
type Controls struct {
	StartEnabled bool   `json:"start_enabled"`
	StartLabel   string `json:"start_label"`
	StopEnabled  bool   `json:"stop_enabled"`
	StopLabel    string `json:"stop_label"`
	ClearEnabled bool   `json:"clear_enabled"`
}

// DefaultControls is the control state before the first status arrives.
func DefaultControls() Controls {
	return Controls{
		StartEnabled: true,
		StartLabel:   LabelStart,
		StopEnabled:  false,
		StopLabel:    LabelStop,
		ClearEnabled: true,
	}
}

// NoticeLevel is the severity of a [Notice].
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message raised by an action outcome.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// NewStatusView computes the view for a successfully fetched status.
func NewStatusView(status backend.RunStatus) StatusView {
	view := StatusView{
		Running: status.Running,
		Label:   LabelIdle,
	}
	if status.Running {
		view.Label = LabelRunning
	}

	if status.Stats != nil {
		view.TotalProcessed = status.Stats.TotalProcessed
		view.Successful = status.Stats.SuccessfulDownloads
		view.Failed = status.Stats.FailedDownloads
		view.SuccessRate = SuccessRate(status.Stats.SuccessfulDownloads, status.Stats.TotalProcessed)
		view.CurrentLink = status.Stats.CurrentLink
	}

	view.ShowCurrentLink = status.Running && view.CurrentLink != ""
	return view
}

// ErrorStatusView is the view shown when the status fetch failed.
func ErrorStatusView(err error) StatusView {
	view := StatusView{Label: LabelError}
	if err != nil {
		view.Error = err.Error()
	}
	return view
}

// SuccessRate returns round(successful/total*100), or 0 when total is not
// positive. Halves round away from zero.
func SuccessRate(successful, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(successful) / float64(total) * 100))
}

// TruncateURL caps u at [MaxURLLength] characters, appending "..." when
// anything was cut.
func TruncateURL(u string) string {
	runes := []rune(u)
	if len(runes) <= MaxURLLength {
		return u
	}
	return string(runes[:MaxURLLength]) + "..."
}

// ProxyLabel renders a log entry's proxy.
func ProxyLabel(proxy *string) string {
	switch {
	case proxy == nil || *proxy == "":
		return "N/A"
	case *proxy == "direct":
		return "DIRECT"
	default:
		return *proxy
	}
}

// timestamp layouts accepted from the backend, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders a backend timestamp as [TimestampLayout].
// Timestamps without a zone are taken as UTC and zoned ones are converted to
// UTC. Unparseable values are returned unchanged.
func FormatTimestamp(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC().Format(TimestampLayout)
		}
	}
	return ts
}

// FormatLogLine renders one entry as
// "<timestamp> | <url> | <proxy> | <result>[ (<duration>s)][ (attempt N)]".
// The attempt suffix only appears for retries (attempt > 1).
func FormatLogLine(entry backend.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s | %s | %s",
		FormatTimestamp(entry.Timestamp),
		TruncateURL(entry.URL),
		ProxyLabel(entry.Proxy),
		entry.Result,
	)
	if entry.Duration != nil {
		b.WriteString(" (" + strconv.FormatFloat(*entry.Duration, 'f', -1, 64) + "s)")
	}
	if entry.Attempt != nil && *entry.Attempt > 1 {
		fmt.Fprintf(&b, " (attempt %d)", *entry.Attempt)
	}
	return b.String()
}

// NewLogsView renders entries in backend order. When there are more than
// limit entries only the last limit are kept; limit <= 0 keeps everything.
func NewLogsView(entries []backend.LogEntry, limit int) LogsView {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if len(entries) == 0 {
		return LogsView{Lines: []string{}, Placeholder: LogsPlaceholder}
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = FormatLogLine(entry)
	}
	return LogsView{Lines: lines}
}

// ErrorLogsView is the view shown when the log fetch failed.
func ErrorLogsView(err error) LogsView {
	msg := "Error loading logs"
	if err != nil {
		msg += ": " + err.Error()
	}
	return LogsView{Lines: []string{}, Error: msg}
}
