package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/output"
	"github.com/antopolskiy/taskt/internal/timer"
)

const (
	boardChrome = 2 // blank line + status bar below the column area
	cardLines   = 2 // content lines per card
)

// --- Styles ---

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	cursorCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	draggedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(0, 1)

	timerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	widgetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func phaseGlyph(p timer.Phase) string {
	switch p {
	case timer.Running:
		return "▶"
	case timer.Selected:
		return "❚❚"
	default:
		return "■"
	}
}

// --- View rendering ---

func (b *Board) viewWidget() string {
	phase := b.sess.Phase()
	title := dimStyle.Render("No task selected")
	if id := b.sess.ActiveTaskID(); id != "" {
		if t, ok := b.base.Task(id); ok {
			title = t.Content
		}
	}

	const widgetChrome = 4                            // border (2) + padding (2)
	width := max(min(b.width, 48), 24) - widgetChrome //nolint:mnd // widget width bounds

	clock := timerStyle.Render(output.FormatElapsed(b.sess.Display()))
	head := phaseGlyph(phase) + " " + truncate(title, width-lipgloss.Width(clock)-4) //nolint:mnd // glyph + gaps
	gap := width - lipgloss.Width(head) - lipgloss.Width(clock)
	line := head + strings.Repeat(" ", max(gap, 1)) + clock

	hint := dimStyle.Render(truncate(phase.String()+" · p:play/pause e:board n:new ?:help q:quit", width))
	parts := []string{line, hint}
	if b.err != nil {
		parts = append(parts, errorStyle.Render(truncate(b.err.Error(), width)))
	}
	return widgetStyle.Width(width + 2).Render(strings.Join(parts, "\n")) //nolint:mnd // padding
}

func (b *Board) viewBoard() string {
	if len(b.columns) == 0 {
		return "No columns."
	}

	colWidth := b.columnWidth()
	renderedCols := make([]string, len(b.columns))
	for i, col := range b.columns {
		renderedCols[i] = b.renderColumn(i, col, colWidth)
	}

	boardView := lipgloss.JoinHorizontal(lipgloss.Top, renderedCols...)
	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderStatusBar())
}

func (b *Board) columnWidth() int {
	if b.width == 0 || len(b.columns) == 0 {
		return 30 //nolint:mnd // default column width
	}
	const maxColWidth = 40
	return min(b.width/len(b.columns), maxColWidth)
}

// visibleCards returns how many cards fit below the column header.
func (b *Board) visibleCards() int {
	ch := cardLines + 2 //nolint:mnd // borders
	n := (b.height - boardChrome - 1) / ch
	return max(n, 1)
}

func (b *Board) renderColumn(colIdx int, col column, width int) string {
	headerText := truncate(fmt.Sprintf("%s (%d)", col.title, len(col.tasks)), width-2) //nolint:mnd // header padding
	header := columnHeaderStyle.Width(width).Render(headerText)
	if colIdx == b.activeCol {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := b.visibleCards()
	start := 0
	if colIdx == b.activeCol && b.activeRow >= maxVis {
		start = b.activeRow - maxVis + 1
	}
	end := min(start+maxVis, len(col.tasks))

	parts := []string{header}
	if start > 0 {
		parts = append(parts, dimStyle.Width(width).Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	if len(col.tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	for rowIdx := start; rowIdx < end; rowIdx++ {
		t := col.tasks[rowIdx]
		cursor := colIdx == b.activeCol && rowIdx == b.activeRow
		parts = append(parts, b.renderCard(t, cursor, width))
	}
	if end < len(col.tasks) {
		parts = append(parts, dimStyle.Width(width).Render(fmt.Sprintf("  ↓ %d more", len(col.tasks)-end)))
	}
	if b.drag != nil && b.drag.col == colIdx && b.drag.overID == col.id {
		parts = append(parts, timerStyle.Width(width).Render("  ▼ drop at end"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t board.Task, cursor bool, width int) string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)

	lines := wrapText(t.Content, cardWidth, cardLines-1)

	ms := t.TimeSpentMs
	meta := dimStyle.Render(board.ShortID(t.ID))
	if t.ID == b.sess.ActiveTaskID() {
		ms = b.sess.Display()
		meta = timerStyle.Render(phaseGlyph(b.sess.Phase())) + " " + meta
	}
	meta += " " + output.FormatElapsed(ms)
	lines = append(lines, meta)

	style := cardStyle
	switch {
	case b.drag != nil && t.ID == b.drag.taskID:
		style = draggedCardStyle
	case cursor:
		style = cursorCardStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n")) //nolint:mnd // border width
}

// wrapText splits text across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapText(text string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if len([]rune(text)) <= maxWidth || maxLines == 1 {
		return []string{truncate(text, maxWidth)}
	}

	words := strings.Fields(text)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if len([]rune(current.String()))+1+len([]rune(word)) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
			continue
		}
		lines = append(lines, truncate(current.String(), maxWidth))
		current.Reset()
		current.WriteString(word)
		if len(lines) == maxLines-1 {
			for _, w := range words[i+1:] {
				current.WriteByte(' ')
				current.WriteString(w)
			}
			break
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func (b *Board) renderStatusBar() string {
	phase := b.sess.Phase()
	clock := phaseGlyph(phase) + " " + output.FormatElapsed(b.sess.Display())

	keys := "←↓↑→:navigate enter:select space:drag p:play/pause n:new d:delete e:widget ?:help q:quit"
	if b.drag != nil {
		keys = "DRAG ←↓↑→:move space/enter:drop esc:cancel"
	}
	status := truncate(" "+clock+" | "+keys, b.width)

	if b.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+b.err.Error(), b.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (b *Board) viewCreateDialog() string {
	content := lipgloss.NewStyle().Bold(true).Render("New task") + "\n\n" +
		b.input.View() + "\n\n" +
		dimStyle.Render("enter:create  esc:cancel")
	return dialogStyle.Render(content)
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", board.ShortID(b.deleteID), b.deleteContent) + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

func (b *Board) viewHelp() string {
	help := []struct{ key, desc string }{
		{"h/←  l/→", "Move between columns"},
		{"j/↓  k/↑", "Move cursor"},
		{"enter", "Select task (In Progress only)"},
		{"p", "Start / pause the timer"},
		{"space", "Grab task; arrows move it, space/enter drops"},
		{"esc", "Cancel drag"},
		{"n", "New task"},
		{"d", "Delete task"},
		{"e", "Toggle widget / board"},
		{"H", "Hide (suspend to shell)"},
		{"r", "Reload board"},
		{"?", "Show this help"},
		{"esc/q", "Quit"},
		{"ctrl+c", "Force quit"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Keyboard Shortcuts"), "")
	keyStyle := lipgloss.NewStyle().Bold(true).Width(12) //nolint:mnd // key column width
	for _, h := range help {
		lines = append(lines, keyStyle.Render(h.key)+"  "+h.desc)
	}
	lines = append(lines, "", dimStyle.Render("Press any key to close"))
	return dialogStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
