package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalmerr/runboard/internal/controller"
	"github.com/jpalmerr/runboard/internal/store"
)

type fakeActions struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeActions) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeActions) Start(context.Context) error   { return f.record("start") }
func (f *fakeActions) Stop(context.Context) error    { return f.record("stop") }
func (f *fakeActions) Refresh(context.Context) error { return f.record("refresh") }

func (f *fakeActions) ClearLogs(context.Context) error { return f.record("clear_logs") }

func (f *fakeActions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeVisibility struct {
	pauses, resumes int
}

func (f *fakeVisibility) Pause()  { f.pauses++ }
func (f *fakeVisibility) Resume() { f.resumes++ }

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(actions *fakeActions, vis Visibility) Model {
	initial := store.NewMemoryStore().Snapshot()
	return NewModel(context.Background(), "Test Board", actions, vis, initial, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestModel_StartKeyRunsAction(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions, nil)

	_, cmd := update(t, m, runeKey("s"))
	if cmd == nil {
		t.Fatal("expected a command for start")
	}

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want actionDoneMsg", msg)
	}
	if done.action != controller.ActionStart {
		t.Errorf("action = %q, want %q", done.action, controller.ActionStart)
	}
	if got := actions.Calls(); len(got) != 1 || got[0] != "start" {
		t.Errorf("calls = %v, want [start]", got)
	}
}

func TestModel_DisabledControlsIgnoreKeys(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions, nil)

	// stop is disabled by default
	_, cmd := update(t, m, runeKey("x"))
	if cmd != nil {
		t.Error("expected no command while stop is disabled")
	}

	d := m.dashboard
	d.Controls.StartEnabled = false
	d.Controls.StartLabel = controller.LabelStarting
	m, _ = update(t, m, dashboardMsg(d))

	_, cmd = update(t, m, runeKey("s"))
	if cmd != nil {
		t.Error("expected no command while start is disabled")
	}
	if got := actions.Calls(); len(got) != 0 {
		t.Errorf("calls = %v, want none", got)
	}
}

func TestModel_ClearKeyRunsAction(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions, nil)

	_, cmd := update(t, m, runeKey("c"))
	if cmd == nil {
		t.Fatal("expected a command for clear logs")
	}
	cmd()

	if got := actions.Calls(); len(got) != 1 || got[0] != "clear_logs" {
		t.Errorf("calls = %v, want [clear_logs]", got)
	}
}

func TestModel_ConfirmPrompt(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want bool
	}{
		{name: "yes", key: runeKey("y"), want: true},
		{name: "upper yes", key: runeKey("Y"), want: true},
		{name: "no", key: runeKey("n"), want: false},
		{name: "any other key", key: runeKey("s"), want: false},
		{name: "enter", key: tea.KeyMsg{Type: tea.KeyEnter}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := &fakeActions{}
			m := newTestModel(actions, nil)
			reply := make(chan bool, 1)

			m, _ = update(t, m, confirmMsg{prompt: controller.ClearLogsPrompt, reply: reply})
			if !strings.Contains(m.View(), controller.ClearLogsPrompt) {
				t.Error("view should show the prompt")
			}

			m, cmd := update(t, m, tt.key)
			if cmd != nil {
				t.Error("answering should not run a command")
			}
			if m.confirm != nil {
				t.Error("prompt should close after answering")
			}
			if got := <-reply; got != tt.want {
				t.Errorf("reply = %v, want %v", got, tt.want)
			}
			if got := actions.Calls(); len(got) != 0 {
				t.Errorf("calls = %v, want none", got)
			}
		})
	}
}

func TestModel_SecondPromptDeclined(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)
	first := make(chan bool, 1)
	second := make(chan bool, 1)

	m, _ = update(t, m, confirmMsg{prompt: "first", reply: first})
	m, _ = update(t, m, confirmMsg{prompt: "second", reply: second})

	if got := <-second; got {
		t.Error("second prompt should be declined")
	}
	if m.confirm == nil || m.confirm.prompt != "first" {
		t.Errorf("confirm = %v, want the first prompt", m.confirm)
	}
}

func TestModel_CtrlCDuringPrompt(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)
	reply := make(chan bool, 1)

	m, _ = update(t, m, confirmMsg{prompt: "clear?", reply: reply})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if got := <-reply; got {
		t.Error("ctrl+c should decline")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("cmd() is not tea.QuitMsg")
	}
}

func TestModel_FocusDrivesPolling(t *testing.T) {
	vis := &fakeVisibility{}
	m := newTestModel(&fakeActions{}, vis)

	m, _ = update(t, m, tea.BlurMsg{})
	m, _ = update(t, m, tea.FocusMsg{})
	_, _ = update(t, m, tea.BlurMsg{})

	if vis.pauses != 2 || vis.resumes != 1 {
		t.Errorf("pauses=%d resumes=%d, want 2 and 1", vis.pauses, vis.resumes)
	}
}

func TestModel_NoticeLifecycle(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)

	d := m.dashboard
	d.Revision = 1
	d.Notice = &store.Notice{Notice: controller.Notice{Level: controller.NoticeInfo, Message: "Job started"}, Seq: 1}
	m, cmd := update(t, m, dashboardMsg(d))
	if cmd == nil {
		t.Fatal("expected an expiry command")
	}
	if m.notice == nil || m.notice.Message != "Job started" {
		t.Fatalf("notice = %v, want Job started", m.notice)
	}
	if !strings.Contains(m.View(), "Job started") {
		t.Error("view should show the notice")
	}
	first := m.shown

	// same notice again is not re-shown
	d.Revision = 2
	m, _ = update(t, m, dashboardMsg(d))
	if m.shown != first {
		t.Errorf("shown = %d, want %d", m.shown, first)
	}

	d.Revision = 3
	d.Notice = &store.Notice{Notice: controller.Notice{Level: controller.NoticeError, Message: "Failed to stop: boom"}, Seq: 2}
	m, _ = update(t, m, dashboardMsg(d))

	// expiry of the first notice must not clear the second
	m, _ = update(t, m, noticeExpiredMsg{seq: first})
	if m.notice == nil {
		t.Fatal("stale expiry cleared the current notice")
	}

	m, _ = update(t, m, noticeExpiredMsg{seq: m.shown})
	if m.notice != nil {
		t.Errorf("notice = %v, want nil after expiry", m.notice)
	}
}

func TestModel_InitialNoticeNotShown(t *testing.T) {
	initial := store.NewMemoryStore().Snapshot()
	initial.Notice = &store.Notice{Notice: controller.Notice{Level: controller.NoticeInfo, Message: "old"}, Seq: 4}

	m := NewModel(context.Background(), "", &fakeActions{}, nil, initial, nil)
	if m.notice != nil {
		t.Errorf("notice = %v, want nil", m.notice)
	}
	if m.lastSeq != 4 {
		t.Errorf("lastSeq = %d, want 4", m.lastSeq)
	}
}

func TestModel_ActionInProgressShowsWarning(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)

	m, cmd := update(t, m, actionDoneMsg{action: controller.ActionStart, err: controller.ErrActionInProgress})
	if cmd == nil {
		t.Fatal("expected an expiry command")
	}
	if m.notice == nil || m.notice.Level != controller.NoticeWarning {
		t.Errorf("notice = %v, want warning", m.notice)
	}
}

func TestModel_ControllerFailureLeavesNoticeToStore(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)

	m, _ = update(t, m, actionDoneMsg{action: controller.ActionStop, err: context.DeadlineExceeded})
	if m.notice != nil {
		t.Errorf("notice = %v, want nil", m.notice)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
		m := newTestModel(&fakeActions{}, nil)
		m, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: cmd() is not tea.QuitMsg", key)
		}
		if m.View() != "" {
			t.Errorf("%s: view should be empty after quitting", key)
		}
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(&fakeActions{}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	for _, want := range []string{"Test Board", controller.LabelIdle, controller.LogsPlaceholder, "Start", "Stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	d := m.dashboard
	d.Status = controller.StatusView{
		Running:         true,
		Label:           controller.LabelRunning,
		TotalProcessed:  10,
		Successful:      7,
		Failed:          3,
		SuccessRate:     70,
		CurrentLink:     "https://example.com/a",
		ShowCurrentLink: true,
	}
	d.Logs = controller.LogsView{Lines: []string{"[2024-01-01 10:00:00] https://example.com/a | Proxy: direct | Result: ok | Time: 1.5s"}}
	m, _ = update(t, m, dashboardMsg(d))

	view = m.View()
	for _, want := range []string{controller.LabelRunning, "70%", "https://example.com/a", "Result: ok"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, controller.LogsPlaceholder) {
		t.Error("placeholder should be hidden when there are log lines")
	}
}

func TestModel_UpdatesChannel(t *testing.T) {
	ch := make(chan store.Dashboard, 1)
	m := NewModel(context.Background(), "", &fakeActions{}, nil, store.Dashboard{}, ch)

	ch <- store.Dashboard{Revision: 9}
	msg := m.Init()()
	d, ok := msg.(dashboardMsg)
	if !ok {
		t.Fatalf("Init()() = %T, want dashboardMsg", msg)
	}
	if d.Revision != 9 {
		t.Errorf("Revision = %d, want 9", d.Revision)
	}

	close(ch)
	if _, ok := m.Init()().(updatesClosedMsg); !ok {
		t.Error("expected updatesClosedMsg after close")
	}
}
