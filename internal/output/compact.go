package output

import (
	"fmt"
	"io"

	"github.com/antopolskiy/taskt/internal/board"
)

// TaskCompact renders board items one per line.
func TaskCompact(w io.Writer, items []board.Item, activeID string) {
	for _, it := range items {
		fmt.Fprintln(w, formatTaskLine(it.ID, it.Column, it.Content, it.TimeSpentMs, it.ID == activeID))
	}
}

// BoardCompact renders each column on a header line followed by its tasks.
func BoardCompact(w io.Writer, cols []ColumnView) {
	for _, c := range cols {
		fmt.Fprintf(w, "%s (%d)\n", c.ID, len(c.Tasks))
		for _, t := range c.Tasks {
			fmt.Fprintln(w, "  "+formatTaskLine(t.ID, "", t.Content, t.TimeSpentMs, t.Active))
		}
	}
}

// StatusCompact renders the timer status on one line.
func StatusCompact(w io.Writer, s TimerStatus) {
	if s.TaskID == "" {
		fmt.Fprintln(w, s.Phase)
		return
	}
	fmt.Fprintf(w, "%s %s %s %s\n", s.Phase, s.Elapsed, board.ShortID(s.TaskID), s.Content)
}

// ActivityLogCompact renders activity log entries in compact format.
func ActivityLogCompact(w io.Writer, entries []board.LogEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Action, board.ShortID(e.TaskID), e.Detail)
	}
}

func formatTaskLine(id, column, content string, ms int64, active bool) string {
	line := board.ShortID(id)
	if column != "" {
		line += " [" + column + "]"
	}
	line += " " + FormatElapsed(ms) + " " + content
	if active {
		line += " *active"
	}
	return line
}
