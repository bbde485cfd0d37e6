package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/antopolskiy/taskt/internal/board"
)

func sampleItems() []board.Item {
	return []board.Item{
		{Task: board.Task{ID: "task-aaaaaaaa-1", Content: "Write report", TimeSpentMs: 3_723_000}, Column: board.ColumnInProgress},
		{Task: board.Task{ID: "task-bbbbbbbb-2", Content: "Plan", TimeSpentMs: 0}, Column: board.ColumnQueue, Position: 1},
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{999, "00:00:00"},
		{1000, "00:00:01"},
		{61_000, "00:01:01"},
		{3_723_000, "01:02:03"},
		{100 * 3_600_000, "100:00:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.ms); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTaskTableColumnAlignment(t *testing.T) {
	oldHeader, oldDim, oldActive := headerStyle, dimStyle, activeStyle
	t.Cleanup(func() {
		headerStyle, dimStyle, activeStyle = oldHeader, oldDim, oldActive
	})
	lipgloss.SetColorProfile(termenv.ANSI256)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))

	var buf strings.Builder
	TaskTable(&buf, sampleItems(), "task-aaaaaaaa-1")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), buf.String())
	}

	// The CONTENT column must start at the same visible offset in every row.
	colStart := func(line, content string) int {
		idx := strings.Index(line, content)
		if idx < 0 {
			t.Fatalf("row %q missing %q", line, content)
		}
		return lipgloss.Width(line[:idx])
	}
	if a, b := colStart(lines[1], "Write report"), colStart(lines[2], "Plan"); a != b {
		t.Errorf("content column misaligned: %d vs %d\n%s", a, b, buf.String())
	}
	if !strings.Contains(lines[1], "▶") {
		t.Errorf("active row not marked: %q", lines[1])
	}
}

func TestTaskTableEmpty(t *testing.T) {
	DisableColor()
	var buf strings.Builder
	TaskTable(&buf, nil, "")
	if !strings.Contains(buf.String(), "No tasks found.") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestBoardTableAndCompact(t *testing.T) {
	DisableColor()
	b, task := board.New().CreateTask("Ship it")
	cols := Columns(b, task.ID)

	if len(cols) != 4 || cols[0].ID != board.ColumnQueue || !cols[0].Tasks[0].Active {
		t.Fatalf("Columns() = %+v", cols)
	}

	var buf strings.Builder
	BoardTable(&buf, cols)
	out := buf.String()
	for _, want := range []string{"Queue (1)", "In Progress (0)", "Ship it", "00:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("BoardTable missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	BoardCompact(&buf, cols)
	if !strings.Contains(buf.String(), "queue (1)\n  "+board.ShortID(task.ID)) {
		t.Errorf("BoardCompact = %q", buf.String())
	}
}

func TestStatusRenderers(t *testing.T) {
	DisableColor()
	idle := TimerStatus{Phase: "idle", Elapsed: FormatElapsed(0)}
	running := TimerStatus{Phase: "running", TaskID: "task-12345678abc", Content: "Focus", ElapsedMs: 5000, Elapsed: "00:00:05"}

	var buf strings.Builder
	StatusCompact(&buf, idle)
	if buf.String() != "idle\n" {
		t.Errorf("StatusCompact(idle) = %q", buf.String())
	}

	buf.Reset()
	StatusCompact(&buf, running)
	if buf.String() != "running 00:00:05 12345678 Focus\n" {
		t.Errorf("StatusCompact(running) = %q", buf.String())
	}

	buf.Reset()
	StatusTable(&buf, running)
	if !strings.Contains(buf.String(), "Elapsed:") || !strings.Contains(buf.String(), "00:00:05") {
		t.Errorf("StatusTable = %q", buf.String())
	}
}

func TestActivityLogRenderers(t *testing.T) {
	DisableColor()
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	entries := []board.LogEntry{{Timestamp: ts, Action: board.ActionMove, TaskID: "task-abcdef123", Detail: "queue -> inProgress"}}

	var buf strings.Builder
	ActivityLogCompact(&buf, entries)
	if want := "2025-02-03 04:05:06 move abcdef12 queue -> inProgress\n"; buf.String() != want {
		t.Errorf("ActivityLogCompact = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	ActivityLogTable(&buf, entries)
	if !strings.Contains(buf.String(), "ACTION") || !strings.Contains(buf.String(), "abcdef12") {
		t.Errorf("ActivityLogTable = %q", buf.String())
	}
}

func TestJSONHelpers(t *testing.T) {
	var buf strings.Builder
	if err := JSON(&buf, map[string]string{"key": "value"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"key": "value"`) {
		t.Errorf("JSON = %q", buf.String())
	}

	if err := JSON(&buf, make(chan int)); err == nil || !strings.Contains(err.Error(), "encoding JSON") {
		t.Errorf("JSON(chan) err = %v", err)
	}

	buf.Reset()
	JSONError(&buf, "TASK_NOT_FOUND", "task x not found", map[string]any{"id": "x"})
	var resp ErrorResponse
	if err := json.Unmarshal([]byte(buf.String()), &resp); err != nil {
		t.Fatalf("JSONError output not JSON: %v", err)
	}
	if resp.Code != "TASK_NOT_FOUND" || resp.Details["id"] != "x" {
		t.Errorf("JSONError = %+v", resp)
	}
}

func TestMessagef(t *testing.T) {
	var buf strings.Builder
	Messagef(&buf, "hello %s", "world")
	if buf.String() != "hello world\n" {
		t.Errorf("Messagef output = %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate(strings.Repeat("é", 20), 10); got != strings.Repeat("é", 7)+"..." {
		t.Errorf("truncate(runes) = %q", got)
	}
}
