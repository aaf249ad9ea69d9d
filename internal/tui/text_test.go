package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jpalmerr/runboard/internal/controller"
)

func TestTextRenderer_Status(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	r.RenderStatus(controller.StatusView{
		Running:         true,
		Label:           controller.LabelRunning,
		TotalProcessed:  4,
		Successful:      3,
		Failed:          1,
		SuccessRate:     75,
		CurrentLink:     "https://example.com/b",
		ShowCurrentLink: true,
	})

	out := buf.String()
	for _, want := range []string{controller.LabelRunning, "Processed 4", "Successful 3", "Failed 1", "Rate 75%", "Current: https://example.com/b"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nGot: %s", want, out)
		}
	}
}

func TestTextRenderer_StatusError(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	r.RenderStatus(controller.ErrorStatusView(errors.New("connection refused")))

	out := buf.String()
	if !strings.Contains(out, controller.LabelError) || !strings.Contains(out, "connection refused") {
		t.Errorf("output = %q, want error label and message", out)
	}
	if strings.Contains(out, "Processed") {
		t.Error("counters should not be printed for a failed status")
	}
}

func TestTextRenderer_Logs(t *testing.T) {
	tests := []struct {
		name string
		view controller.LogsView
		want string
	}{
		{"lines", controller.LogsView{Lines: []string{"first", "second"}}, "first\nsecond\n"},
		{"placeholder", controller.NewLogsView(nil, 10), controller.LogsPlaceholder},
		{"error", controller.ErrorLogsView(errors.New("boom")), "Error loading logs: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewTextRenderer(&buf).RenderLogs(tt.view)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTextRenderer_NoticeAndControls(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	r.RenderControls(controller.DefaultControls())
	if buf.Len() != 0 {
		t.Errorf("controls printed %q, want nothing", buf.String())
	}

	r.Notify(controller.Notice{Level: controller.NoticeWarning, Message: "Job is already running"})
	if !strings.Contains(buf.String(), "Job is already running") {
		t.Errorf("output = %q, want the notice", buf.String())
	}
}
