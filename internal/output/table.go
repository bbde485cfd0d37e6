package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/antopolskiy/taskt/internal/board"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	activeStyle = lipgloss.NewStyle()
}

const maxContent = 50

// TaskTable renders board items as a formatted table. activeID marks the
// active task.
func TaskTable(w io.Writer, items []board.Item, activeID string) {
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tasks found."))
		return
	}

	const pad = 2
	idW, colW, timeW, contentW := 4, 8, 10, 7
	for _, it := range items {
		idW = max(idW, len(board.ShortID(it.ID))+pad)
		colW = max(colW, len(it.Column)+pad)
		contentW = max(contentW, min(len(it.Content)+pad, maxContent+pad))
	}

	header := padRight("", 2) + padRight("ID", idW) + " " + padRight("COLUMN", colW) + " " +
		padRight("TIME", timeW) + " " + "CONTENT"
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, it := range items {
		marker := "  "
		if it.ID == activeID {
			marker = activeStyle.Render("▶ ")
		}
		fmt.Fprintln(w, marker+padRight(board.ShortID(it.ID), idW)+" "+
			padRight(it.Column, colW)+" "+
			padRight(FormatElapsed(it.TimeSpentMs), timeW)+" "+
			truncate(it.Content, maxContent))
	}
}

// TaskDetail renders a single task with its placement.
func TaskDetail(w io.Writer, it board.Item, status TimerStatus) {
	title := "Task " + board.ShortID(it.ID)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(title)))
	printField(w, "ID", it.ID)
	printField(w, "Content", it.Content)
	printField(w, "Column", it.Column)
	printField(w, "Position", fmt.Sprintf("%d", it.Position+1))
	printField(w, "Time spent", FormatElapsed(it.TimeSpentMs))
	if status.TaskID == it.ID {
		printField(w, "Timer", activeStyle.Render(status.Phase))
	}
}

// BoardTable renders every column with its tasks.
func BoardTable(w io.Writer, cols []ColumnView) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d)", c.Title, len(c.Tasks))))
		if len(c.Tasks) == 0 {
			fmt.Fprintln(w, "  "+dimStyle.Render("--"))
			continue
		}
		for _, t := range c.Tasks {
			marker := "  "
			if t.Active {
				marker = activeStyle.Render("▶ ")
			}
			fmt.Fprintln(w, marker+padRight(board.ShortID(t.ID), 10)+
				padRight(FormatElapsed(t.TimeSpentMs), 10)+truncate(t.Content, maxContent))
		}
	}
}

// StatusTable renders the timer status.
func StatusTable(w io.Writer, s TimerStatus) {
	printField(w, "Phase", s.Phase)
	if s.TaskID == "" {
		printField(w, "Task", dimStyle.Render("--"))
		return
	}
	printField(w, "Task", board.ShortID(s.TaskID)+"  "+s.Content)
	printField(w, "Elapsed", activeStyle.Render(s.Elapsed))
}

// ActivityLogTable renders activity log entries.
func ActivityLogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No activity log entries found."))
		return
	}
	header := padRight("TIMESTAMP", 20) + " " + padRight("ACTION", 8) + " " + padRight("TASK", 10) + " DETAIL"
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		fmt.Fprintln(w, padRight(e.Timestamp.Format("2006-01-02 15:04:05"), 20)+" "+
			padRight(e.Action, 8)+" "+padRight(board.ShortID(e.TaskID), 10)+" "+e.Detail)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatElapsed renders milliseconds as HH:MM:SS. Negative values render
// as zero.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	h := int64(d / time.Hour)
	m := int64(d/time.Minute) % 60 //nolint:mnd // minutes per hour
	s := int64(d/time.Second) % 60 //nolint:mnd // seconds per minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// padRight pads s with spaces to width visible cells.
func padRight(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
