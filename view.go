package runboard

import (
	"github.com/jpalmerr/runboard/internal/controller"
	"github.com/jpalmerr/runboard/internal/store"
)

// View is the full rendered state of the board: status, logs, controls and
// the latest notice. Each update carries a higher Revision.
type View = store.Dashboard

// StatusView is the rendered run status.
type StatusView = controller.StatusView

// LogsView is the rendered list of recent log lines.
type LogsView = controller.LogsView

// Controls is the enabled state and label of each action.
type Controls = controller.Controls

// Notice is a transient message raised by an action.
type Notice = controller.Notice

// NoticeLevel is the severity of a [Notice].
type NoticeLevel = controller.NoticeLevel

// Status labels.
const (
	LabelRunning = controller.LabelRunning
	LabelIdle    = controller.LabelIdle
	LabelError   = controller.LabelError
)

// Notice levels.
const (
	NoticeInfo    = controller.NoticeInfo
	NoticeWarning = controller.NoticeWarning
	NoticeError   = controller.NoticeError
)
