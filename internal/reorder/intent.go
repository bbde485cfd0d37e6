package reorder

import (
	"fmt"

	"github.com/antopolskiy/taskt/internal/board"
)

// IntentKind identifies a timer side effect of a committed gesture.
type IntentKind int

const (
	// SelectTask makes the task the active timer task.
	SelectTask IntentKind = iota + 1
	// ForceIdle clears the active task, pausing it first if it runs.
	ForceIdle
)

// Intent is an instruction for the timer coordinator.
type Intent struct {
	Kind   IntentKind
	TaskID string
}

func (i Intent) String() string {
	switch i.Kind {
	case SelectTask:
		return "SelectTask(" + i.TaskID + ")"
	case ForceIdle:
		return "ForceIdle"
	default:
		return fmt.Sprintf("Intent(%d)", int(i.Kind))
	}
}

// Gesture is a finished drag: TaskID was dropped on OverID.
type Gesture struct {
	TaskID string
	OverID string
}

// Rules carries the timer context a commit is evaluated against.
type Rules struct {
	InProgressColumn string
	ActiveTaskID     string
}

// DefaultRules returns rules for the standard board with the given active task.
func DefaultRules(activeTaskID string) Rules {
	return Rules{InProgressColumn: board.InProgressColumn, ActiveTaskID: activeTaskID}
}

// Transfer describes where a committed gesture moved its task.
type Transfer struct {
	From      string
	To        string
	Cancelled bool
}

// ApplyCommit commits g and returns the new board with the timer intents
// the move implies. A task entering the in-progress column from elsewhere is
// selected unless it is already active. The active task leaving the
// in-progress column forces the timer idle.
func ApplyCommit(b board.Board, g Gesture, r Rules) (board.Board, []Intent) {
	next, tr := CommitTransfer(b, g)
	if tr.Cancelled || tr.From == tr.To {
		return next, nil
	}

	var intents []Intent
	switch {
	case tr.To == r.InProgressColumn && g.TaskID != r.ActiveTaskID:
		intents = append(intents, Intent{Kind: SelectTask, TaskID: g.TaskID})
	case tr.From == r.InProgressColumn && g.TaskID == r.ActiveTaskID:
		intents = append(intents, Intent{Kind: ForceIdle})
	}
	return next, intents
}

// CommitTransfer commits g and reports the source and destination columns.
func CommitTransfer(b board.Board, g Gesture) (board.Board, Transfer) {
	from, ok := b.FindColumnOf(g.TaskID)
	if !ok || g.TaskID == g.OverID {
		return b, Transfer{From: from, To: from, Cancelled: true}
	}
	to, ok := Destination(b, g.OverID)
	if !ok {
		return b, Transfer{From: from, To: from, Cancelled: true}
	}
	return Commit(b, g.TaskID, g.OverID), Transfer{From: from, To: to}
}
