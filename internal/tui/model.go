package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/runboard/internal/controller"
	"github.com/jpalmerr/runboard/internal/store"
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 5 * time.Second

// headerHeight and footerHeight are the lines around the logs viewport.
const (
	headerHeight = 9
	footerHeight = 3
)

// Actions are the controller operations bound to keys.
type Actions interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Refresh(ctx context.Context) error
	ClearLogs(ctx context.Context) error
}

// Visibility pauses and resumes background polling.
type Visibility interface {
	Pause()
	Resume()
}

// dashboardMsg carries a store update into the program.
type dashboardMsg store.Dashboard

// updatesClosedMsg is sent when the store listener channel closes.
type updatesClosedMsg struct{}

// actionDoneMsg reports the outcome of a key-triggered action.
type actionDoneMsg struct {
	action string
	err    error
}

// noticeExpiredMsg clears the notice with the given sequence number.
type noticeExpiredMsg struct {
	seq uint64
}

// Model is the Bubble Tea model of the terminal dashboard.
type Model struct {
	ctx        context.Context
	title      string
	actions    Actions
	visibility Visibility
	updates    <-chan store.Dashboard

	dashboard store.Dashboard
	notice    *controller.Notice
	// lastSeq is the newest store notice seen; shown tags the notice on
	// screen so a stale expiry does not clear a newer one.
	lastSeq uint64
	shown   uint64

	// confirm is the prompt waiting for a y/N answer, if any.
	confirm  *confirmMsg
	quitting bool

	viewport viewport.Model
	width    int
	height   int
}

// NewModel creates the terminal dashboard.
//
// initial seeds the view before the first update arrives, updates is a
// store listener channel and visibility may be nil when focus should not
// affect polling.
func NewModel(ctx context.Context, title string, actions Actions, visibility Visibility, initial store.Dashboard, updates <-chan store.Dashboard) Model {
	if title == "" {
		title = "Runboard"
	}
	m := Model{
		ctx:        ctx,
		title:      title,
		actions:    actions,
		visibility: visibility,
		updates:    updates,
		viewport:   viewport.New(80, 10),
		width:      80,
		height:     24,
	}
	m.dashboard = initial
	if initial.Notice != nil {
		// already old news when the terminal opens
		m.lastSeq = initial.Notice.Seq
	}
	m.viewport.SetContent(m.logsContent())
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForDashboard(m.updates)
}

// waitForDashboard blocks on the next store update.
func waitForDashboard(ch <-chan store.Dashboard) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return dashboardMsg(d)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.viewport.SetContent(m.logsContent())
		m.viewport.GotoBottom()
		return m, nil

	case tea.FocusMsg:
		if m.visibility != nil {
			m.visibility.Resume()
		}
		return m, nil

	case tea.BlurMsg:
		if m.visibility != nil {
			m.visibility.Pause()
		}
		return m, nil

	case dashboardMsg:
		cmd := m.applyDashboard(store.Dashboard(msg))
		return m, tea.Batch(cmd, waitForDashboard(m.updates))

	case updatesClosedMsg:
		return m, nil

	case actionDoneMsg:
		// controller failures arrive as notices through the store; only
		// rejected overlaps need a local one
		if errors.Is(msg.err, controller.ErrActionInProgress) || errors.Is(msg.err, controller.ErrRefreshInProgress) {
			return m, m.showLocal(controller.NoticeWarning, fmt.Sprintf("%s: %v", msg.action, msg.err))
		}
		if msg.err != nil && msg.action == "refresh" {
			return m, m.showLocal(controller.NoticeError, "Refresh failed: "+msg.err.Error())
		}
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.shown {
			m.notice = nil
		}
		return m, nil

	case confirmMsg:
		if m.confirm != nil {
			// one prompt at a time; the controller never asks twice
			msg.reply <- false
			return m, nil
		}
		m.confirm = &msg
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirm != nil {
		reply := m.confirm.reply
		m.confirm = nil
		switch key {
		case "y", "Y":
			reply <- true
			return m, nil
		case "ctrl+c":
			reply <- false
			m.quitting = true
			return m, tea.Quit
		default:
			reply <- false
			return m, nil
		}
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "s":
		if !m.dashboard.Controls.StartEnabled {
			return m, nil
		}
		return m, m.run(controller.ActionStart, m.actions.Start)
	case "x":
		if !m.dashboard.Controls.StopEnabled {
			return m, nil
		}
		return m, m.run(controller.ActionStop, m.actions.Stop)
	case "r":
		return m, m.run("refresh", m.actions.Refresh)
	case "c":
		if !m.dashboard.Controls.ClearEnabled {
			return m, nil
		}
		return m, m.run(controller.ActionClearLogs, m.actions.ClearLogs)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// run executes an action off the update loop.
func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

// applyDashboard takes a new dashboard and returns the notice expiry command
// when it carries a notice not shown yet.
func (m *Model) applyDashboard(d store.Dashboard) tea.Cmd {
	if d.Revision < m.dashboard.Revision {
		// listener started before the initial snapshot was taken
		return nil
	}
	m.dashboard = d
	m.viewport.SetContent(m.logsContent())
	m.viewport.GotoBottom()

	if d.Notice == nil || d.Notice.Seq <= m.lastSeq {
		return nil
	}
	m.lastSeq = d.Notice.Seq
	return m.show(d.Notice.Notice)
}

// showLocal displays a notice that did not come from the store.
func (m *Model) showLocal(level controller.NoticeLevel, message string) tea.Cmd {
	return m.show(controller.Notice{Level: level, Message: message})
}

func (m *Model) show(n controller.Notice) tea.Cmd {
	m.shown++
	m.notice = &n
	seq := m.shown
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m Model) logsContent() string {
	logs := m.dashboard.Logs
	switch {
	case logs.Error != "":
		return errorStyle.Render(logs.Error)
	case len(logs.Lines) == 0:
		placeholder := logs.Placeholder
		if placeholder == "" {
			placeholder = controller.LogsPlaceholder
		}
		return mutedStyle.Render(placeholder)
	default:
		return strings.Join(logs.Lines, "\n")
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.dashboard.Status
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title) + "  " + renderStatusLabel(s) + "\n")
	if s.Error != "" {
		b.WriteString(errorStyle.Render(s.Error))
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(boldStyle.Render("Processed ")+fmt.Sprint(s.TotalProcessed)),
		statStyle.Render(boldStyle.Render("Successful ")+fmt.Sprint(s.Successful)),
		statStyle.Render(boldStyle.Render("Failed ")+fmt.Sprint(s.Failed)),
		statStyle.Render(boldStyle.Render("Rate ")+fmt.Sprintf("%d%%", s.SuccessRate)),
	) + "\n")

	if s.ShowCurrentLink {
		b.WriteString("Current: " + linkStyle.Render(s.CurrentLink))
	}
	b.WriteString("\n\n")

	c := m.dashboard.Controls
	b.WriteString(strings.Join([]string{
		renderKey("s", c.StartLabel, c.StartEnabled),
		renderKey("x", c.StopLabel, c.StopEnabled),
		renderKey("c", "Clear logs", c.ClearEnabled),
		renderKey("r", "Refresh", true),
	}, "   ") + "\n")
	b.WriteString(renderDivider(m.width) + "\n")

	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(renderDivider(m.width) + "\n")

	switch {
	case m.confirm != nil:
		b.WriteString(warningStyle.Render(m.confirm.prompt+" (y/N)") + "\n")
	case m.notice != nil:
		b.WriteString(renderNotice(*m.notice) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ scroll • q quit"))
	return b.String()
}
