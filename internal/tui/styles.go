package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/runboard/internal/controller"
)

var (
	colorPrimary = lipgloss.Color("62")  // Purple/blue
	colorSuccess = lipgloss.Color("42")  // Green
	colorError   = lipgloss.Color("196") // Red
	colorWarning = lipgloss.Color("214") // Orange/Yellow
	colorInfo    = lipgloss.Color("39")  // Cyan
	colorMuted   = lipgloss.Color("240") // Dark gray
	colorBorder  = lipgloss.Color("238") // Border gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	boldStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	linkStyle = lipgloss.NewStyle().
			Foreground(colorInfo).
			Italic(true)

	statStyle = lipgloss.NewStyle().
			Width(16)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	disabledKeyStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Strikethrough(true)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

func renderDivider(length int) string {
	if length <= 0 {
		length = 40
	}
	return dividerStyle.Render(strings.Repeat("─", length))
}

func renderStatusLabel(v controller.StatusView) string {
	switch v.Label {
	case controller.LabelRunning:
		return runningStyle.Render("● " + v.Label)
	case controller.LabelError:
		return errorStyle.Render("● " + v.Label)
	default:
		return idleStyle.Render("● " + v.Label)
	}
}

func renderNotice(n controller.Notice) string {
	switch n.Level {
	case controller.NoticeError:
		return errorStyle.Render("✗ " + n.Message)
	case controller.NoticeWarning:
		return warningStyle.Render("! " + n.Message)
	default:
		return infoStyle.Render("✓ " + n.Message)
	}
}

// renderKey renders a key hint, struck through when the action is disabled.
func renderKey(key, label string, enabled bool) string {
	if !enabled {
		return disabledKeyStyle.Render(key + " " + label)
	}
	return keyStyle.Render(key) + " " + label
}
