package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/runboard/internal/controller"
)

// TextRenderer prints controller output as plain styled text, for one-shot
// commands. Control updates are not printed.
type TextRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextRenderer creates a TextRenderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) RenderStatus(v controller.StatusView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, boldStyle.Render("Status ")+renderStatusLabel(v))
	if v.Error != "" {
		fmt.Fprintln(r.w, errorStyle.Render(v.Error))
		return
	}

	fmt.Fprintln(r.w, lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("Processed %d", v.TotalProcessed)),
		statStyle.Render(fmt.Sprintf("Successful %d", v.Successful)),
		statStyle.Render(fmt.Sprintf("Failed %d", v.Failed)),
		statStyle.Render(fmt.Sprintf("Rate %d%%", v.SuccessRate)),
	))
	if v.ShowCurrentLink {
		fmt.Fprintln(r.w, "Current: "+linkStyle.Render(v.CurrentLink))
	}
}

func (r *TextRenderer) RenderLogs(v controller.LogsView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case v.Error != "":
		fmt.Fprintln(r.w, errorStyle.Render(v.Error))
	case len(v.Lines) == 0:
		fmt.Fprintln(r.w, mutedStyle.Render(v.Placeholder))
	default:
		for _, line := range v.Lines {
			fmt.Fprintln(r.w, line)
		}
	}
}

func (r *TextRenderer) RenderControls(controller.Controls) {}

func (r *TextRenderer) Notify(n controller.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, renderNotice(n))
}
