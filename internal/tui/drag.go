package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// drag is a keyboard drag gesture. The pointer addresses the committed
// board: row == len(tasks) points at the column tail.
type drag struct {
	taskID string
	col    int
	row    int
	overID string
}

func (b *Board) startDrag() {
	t, ok := b.selectedTask()
	if !ok {
		b.setErr(errNothingToDrag)
		return
	}
	b.err = nil
	b.drag = &drag{taskID: t.ID, col: b.activeCol, row: b.activeRow}
}

func (b *Board) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", keyLeft:
		b.movePointer(-1, 0)
	case "l", keyRight:
		b.movePointer(1, 0)
	case "j", keyDown:
		b.movePointer(0, 1)
	case "k", keyUp:
		b.movePointer(0, -1)
	case keySpace, keyEnter:
		b.drop()
	case keyEsc:
		b.cancelDrag()
	}
	return b, nil
}

func (b *Board) movePointer(dc, dr int) {
	d := b.drag
	cols := buildColumns(b.base)
	if len(cols) == 0 {
		return
	}
	d.col = min(max(d.col+dc, 0), len(cols)-1)
	d.row = min(max(d.row+dr, 0), len(cols[d.col].tasks))

	col := cols[d.col]
	if d.row < len(col.tasks) {
		d.overID = col.tasks[d.row].ID
	} else {
		d.overID = col.id
	}
	b.loadColumns()
	b.focusTask(d.taskID)
}

func (b *Board) drop() {
	d := b.drag
	b.drag = nil
	if d.overID != "" {
		_, err := b.sess.Commit(b.ctx, d.taskID, d.overID)
		b.setErr(err)
	}
	b.loadColumns()
	b.focusTask(d.taskID)
}

func (b *Board) cancelDrag() {
	id := b.drag.taskID
	b.drag = nil
	b.loadColumns()
	b.focusTask(id)
}

// Dragging reports whether a gesture is in progress.
func (b *Board) Dragging() bool {
	return b.drag != nil
}
