// Package board holds the kanban board model: tasks, fixed columns and the
// ownership invariants that every engine operation preserves.
package board

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Well-known column IDs, in display order.
const (
	ColumnQueue      = "queue"
	ColumnInProgress = "inProgress"
	ColumnReview     = "review"
	ColumnDone       = "done"

	// DefaultColumn receives newly created tasks.
	DefaultColumn = ColumnQueue
	// InProgressColumn is the column whose members may own the timer.
	InProgressColumn = ColumnInProgress
)

// DefaultColumns lists the columns created on first run.
var DefaultColumns = []Column{
	{ID: ColumnQueue, Title: "Queue"},
	{ID: ColumnInProgress, Title: "In Progress"},
	{ID: ColumnReview, Title: "Review"},
	{ID: ColumnDone, Title: "Done"},
}

// ErrInvalid is wrapped by Validate when an invariant does not hold.
var ErrInvalid = errors.New("invalid board")

// NewTaskID generates task identifiers. Replaceable in tests.
var NewTaskID = func() string {
	return "task-" + uuid.NewString()
}

// Task is a unit of work with accumulated tracked time.
type Task struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	TimeSpentMs int64  `json:"time_spent_ms"`
}

// Column is an ordered list of task IDs.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// Board is the whole board state. Values are treated as immutable: every
// operation returns a new Board and leaves its receiver untouched.
type Board struct {
	Tasks       map[string]Task   `json:"tasks"`
	Columns     map[string]Column `json:"columns"`
	ColumnOrder []string          `json:"columnOrder"`
}

// New returns an empty board with the default columns.
func New() Board {
	b := Board{
		Tasks:       make(map[string]Task),
		Columns:     make(map[string]Column, len(DefaultColumns)),
		ColumnOrder: make([]string, 0, len(DefaultColumns)),
	}
	for _, c := range DefaultColumns {
		b.Columns[c.ID] = Column{ID: c.ID, Title: c.Title, TaskIDs: []string{}}
		b.ColumnOrder = append(b.ColumnOrder, c.ID)
	}
	return b
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := Board{
		Tasks:       make(map[string]Task, len(b.Tasks)),
		Columns:     make(map[string]Column, len(b.Columns)),
		ColumnOrder: slices.Clone(b.ColumnOrder),
	}
	if out.ColumnOrder == nil {
		out.ColumnOrder = []string{}
	}
	for id, t := range b.Tasks {
		out.Tasks[id] = t
	}
	for id, c := range b.Columns {
		ids := make([]string, len(c.TaskIDs))
		copy(ids, c.TaskIDs)
		out.Columns[id] = Column{ID: c.ID, Title: c.Title, TaskIDs: ids}
	}
	return out
}

// WithColumn returns a copy of the board with col replacing the column of
// the same ID.
func (b Board) WithColumn(col Column) Board {
	out := b.Clone()
	out.Columns[col.ID] = col
	return out
}

// CreateTask adds a task with the given content at the head of the default
// column. Content validation is the caller's concern.
func (b Board) CreateTask(content string) (Board, Task) {
	t := Task{ID: NewTaskID(), Content: content}
	out := b.Clone()
	out.Tasks[t.ID] = t

	col, ok := out.Columns[DefaultColumn]
	if !ok {
		col = Column{ID: DefaultColumn, Title: DefaultColumn}
		out.ColumnOrder = append(out.ColumnOrder, DefaultColumn)
	}
	col.TaskIDs = append([]string{t.ID}, col.TaskIDs...)
	out.Columns[DefaultColumn] = col
	return out, t
}

// DeleteTask removes id from columnID and from the task map. It is a no-op
// when the column does not contain the task.
func (b Board) DeleteTask(id, columnID string) Board {
	col, ok := b.Columns[columnID]
	if !ok || !slices.Contains(col.TaskIDs, id) {
		return b
	}
	out := b.Clone()
	col = out.Columns[columnID]
	col.TaskIDs = slices.DeleteFunc(col.TaskIDs, func(s string) bool { return s == id })
	out.Columns[columnID] = col
	delete(out.Tasks, id)
	return out
}

// FindColumnOf returns the ID of the column that holds taskID.
func (b Board) FindColumnOf(taskID string) (string, bool) {
	for _, colID := range b.ColumnOrder {
		if slices.Contains(b.Columns[colID].TaskIDs, taskID) {
			return colID, true
		}
	}
	return "", false
}

// MergeTask replaces the stored copy of t. Unknown tasks are ignored.
func (b Board) MergeTask(t Task) Board {
	if _, ok := b.Tasks[t.ID]; !ok {
		return b
	}
	out := b.Clone()
	out.Tasks[t.ID] = t
	return out
}

// Task looks up a task by ID.
func (b Board) Task(id string) (Task, bool) {
	t, ok := b.Tasks[id]
	return t, ok
}

// ColumnTasks returns the tasks of a column in display order.
func (b Board) ColumnTasks(columnID string) []Task {
	col := b.Columns[columnID]
	tasks := make([]Task, 0, len(col.TaskIDs))
	for _, id := range col.TaskIDs {
		if t, ok := b.Tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// CountByColumn returns the number of tasks in each column.
func (b Board) CountByColumn() map[string]int {
	counts := make(map[string]int, len(b.Columns))
	for id, c := range b.Columns {
		counts[id] = len(c.TaskIDs)
	}
	return counts
}

// Validate checks the ownership invariants: every listed ID names a stored
// task, every stored task is listed in exactly one column, column IDs match
// their keys, and ColumnOrder is a permutation of the column keys.
func (b Board) Validate() error {
	if len(b.ColumnOrder) != len(b.Columns) {
		return fmt.Errorf("%w: columnOrder has %d entries for %d columns", ErrInvalid, len(b.ColumnOrder), len(b.Columns))
	}
	seenCol := make(map[string]bool, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if _, ok := b.Columns[id]; !ok {
			return fmt.Errorf("%w: columnOrder references unknown column %q", ErrInvalid, id)
		}
		if seenCol[id] {
			return fmt.Errorf("%w: column %q repeated in columnOrder", ErrInvalid, id)
		}
		seenCol[id] = true
	}

	owner := make(map[string]string, len(b.Tasks))
	for _, colID := range b.ColumnOrder {
		col := b.Columns[colID]
		if col.ID != colID {
			return fmt.Errorf("%w: column key %q holds column %q", ErrInvalid, colID, col.ID)
		}
		for _, id := range col.TaskIDs {
			if _, ok := b.Tasks[id]; !ok {
				return fmt.Errorf("%w: column %q references unknown task %q", ErrInvalid, colID, id)
			}
			if prev, dup := owner[id]; dup {
				return fmt.Errorf("%w: task %q listed in %q and %q", ErrInvalid, id, prev, colID)
			}
			owner[id] = colID
		}
	}
	for id, t := range b.Tasks {
		if _, ok := owner[id]; !ok {
			return fmt.Errorf("%w: task %q is not in any column", ErrInvalid, id)
		}
		if t.ID != id {
			return fmt.Errorf("%w: task key %q holds task %q", ErrInvalid, id, t.ID)
		}
		if t.TimeSpentMs < 0 {
			return fmt.Errorf("%w: task %q has negative time", ErrInvalid, id)
		}
	}
	return nil
}
