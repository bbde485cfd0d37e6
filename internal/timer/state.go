// Package timer coordinates the active task with an external timer authority.
//
// The coordinator owns no state of its own: every operation takes the current
// State and returns the next one. The authority is the source of truth for
// TimeSpentMs; the coordinator only merges what the authority returns.
package timer

import (
	"context"

	"github.com/antopolskiy/taskt/internal/board"
)

// Phase is the timer run state derived from a Selection.
type Phase int

const (
	Idle Phase = iota
	Selected
	Running
)

func (p Phase) String() string {
	switch p {
	case Selected:
		return "selected"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Selection is the active task and whether its timer runs.
type Selection struct {
	ActiveTaskID string
	Running      bool
}

// State is the engine state threaded through coordinator operations.
type State struct {
	Board     board.Board
	Selection Selection
	// DisplayMs is the last elapsed value shown for the active task.
	DisplayMs int64
}

// Phase reports the run state.
func (s State) Phase() Phase {
	switch {
	case s.Selection.ActiveTaskID == "":
		return Idle
	case s.Selection.Running:
		return Running
	default:
		return Selected
	}
}

// ActiveTask returns the active task, if any.
func (s State) ActiveTask() (board.Task, bool) {
	if s.Selection.ActiveTaskID == "" {
		return board.Task{}, false
	}
	return s.Board.Task(s.Selection.ActiveTaskID)
}

// Display returns the elapsed milliseconds to show: the polled value while
// running, the stored total while selected, zero while idle.
func (s State) Display() int64 {
	switch s.Phase() {
	case Running:
		return s.DisplayMs
	case Selected:
		t, _ := s.ActiveTask()
		return t.TimeSpentMs
	default:
		return 0
	}
}

// Elapsed is the authority's view of the selected task.
type Elapsed struct {
	TaskID    string `json:"taskId"`
	ElapsedMs int64  `json:"elapsedMs"`
	Running   bool   `json:"running"`
}

// Authority owns elapsed-time accounting. Every call may fail; callers treat
// a failure as "no state change".
type Authority interface {
	// StartTimer stops any running timer and starts t, returning the
	// authority's copy of the task.
	StartTimer(ctx context.Context, t board.Task) (board.Task, error)
	// PauseTimer stops the running timer and returns the task with the
	// elapsed segment merged, or nil when nothing was running.
	PauseTimer(ctx context.Context) (*board.Task, error)
	// QueryElapsed reports the selected task's total. ok is false when no
	// task is selected.
	QueryElapsed(ctx context.Context) (e Elapsed, ok bool, err error)
	// SyncTask tells the authority about the selected task without starting it.
	SyncTask(ctx context.Context, t board.Task) error
}
