package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/antopolskiy/taskt/internal/board"
)

// JSON writes data as indented JSON to w.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to w as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	resp := ErrorResponse{Error: msg, Code: code, Details: details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort
}

// TimerStatus is the rendered state of the timer.
type TimerStatus struct {
	Phase     string `json:"phase"`
	TaskID    string `json:"task_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Column    string `json:"column,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Elapsed   string `json:"elapsed"`
}

// ColumnView is one column with its tasks, in board order.
type ColumnView struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Tasks []TaskView `json:"tasks"`
}

// TaskView is a task as listed on the board.
type TaskView struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	TimeSpentMs int64  `json:"time_spent_ms"`
	Active      bool   `json:"active,omitempty"`
}

// Columns builds the column views of b in column order.
func Columns(b board.Board, activeID string) []ColumnView {
	out := make([]ColumnView, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		col := b.Columns[id]
		cv := ColumnView{ID: id, Title: col.Title, Tasks: make([]TaskView, 0, len(col.TaskIDs))}
		for _, t := range b.ColumnTasks(id) {
			cv.Tasks = append(cv.Tasks, TaskView{
				ID: t.ID, Content: t.Content, TimeSpentMs: t.TimeSpentMs, Active: t.ID == activeID,
			})
		}
		out = append(out, cv)
	}
	return out
}
