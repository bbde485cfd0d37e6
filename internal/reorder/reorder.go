// Package reorder computes board changes for drag gestures.
//
// A gesture is a sequence of Preview calls followed by exactly one Commit or
// a cancellation. Both functions are pure: they never mutate their input
// board and return it unchanged when the gesture cannot be resolved.
package reorder

import (
	"slices"

	"github.com/antopolskiy/taskt/internal/board"
)

// target is a resolved drop target.
type target struct {
	column string
	task   string // empty when dropped on the column itself
}

// resolve maps overID to a destination column. Column IDs take precedence
// over task IDs.
func resolve(b board.Board, overID string) (target, bool) {
	if _, ok := b.Columns[overID]; ok {
		return target{column: overID}, true
	}
	col, ok := b.FindColumnOf(overID)
	if !ok {
		return target{}, false
	}
	return target{column: col, task: overID}, true
}

// Destination returns the column a drop on overID would land in.
func Destination(b board.Board, overID string) (string, bool) {
	t, ok := resolve(b, overID)
	return t.column, ok
}

// Preview returns the speculative board for a gesture hovering over overID.
// Calling it repeatedly with the same arguments converges to the same board.
func Preview(b board.Board, draggedID, overID string) board.Board {
	src, ok := b.FindColumnOf(draggedID)
	if !ok {
		return b
	}
	dst, ok := resolve(b, overID)
	if !ok {
		return b
	}

	full := b.Columns[dst.column].TaskIDs
	rest := without(full, draggedID)

	idx := len(rest)
	switch {
	case dst.task == draggedID:
		idx = slices.Index(full, draggedID)
	case dst.task != "":
		idx = slices.Index(rest, dst.task)
	}

	out := b.Clone()
	destCol := out.Columns[dst.column]
	destCol.TaskIDs = insertAt(rest, idx, draggedID)
	out.Columns[dst.column] = destCol

	if src != dst.column {
		srcCol := out.Columns[src]
		srcCol.TaskIDs = without(srcCol.TaskIDs, draggedID)
		out.Columns[src] = srcCol
	}
	return out
}

// Commit applies the end of a gesture.
//
// Within one column the dragged task moves to the target's original index
// in the list without the dragged task, so a forward drag lands after the
// target and a backward drag lands before it. Dropping on the column moves
// the task to the end. Across columns the task is inserted before the target
// task, or appended when dropped on the column. Unknown IDs and self-drops
// leave the board unchanged.
func Commit(b board.Board, draggedID, overID string) board.Board {
	if draggedID == overID {
		return b
	}
	src, ok := b.FindColumnOf(draggedID)
	if !ok {
		return b
	}
	dst, ok := resolve(b, overID)
	if !ok {
		return b
	}

	if src == dst.column {
		ids := b.Columns[src].TaskIDs
		from := slices.Index(ids, draggedID)
		to := len(ids) - 1
		if dst.task != "" {
			to = slices.Index(ids, dst.task)
		}
		if from == to {
			return b
		}
		col := b.Columns[src]
		col.TaskIDs = arrayMove(ids, from, to)
		return b.WithColumn(col)
	}

	out := b.Clone()
	srcCol := out.Columns[src]
	srcCol.TaskIDs = without(srcCol.TaskIDs, draggedID)
	out.Columns[src] = srcCol

	destCol := out.Columns[dst.column]
	idx := len(destCol.TaskIDs)
	if dst.task != "" {
		idx = slices.Index(destCol.TaskIDs, dst.task)
	}
	destCol.TaskIDs = insertAt(destCol.TaskIDs, idx, draggedID)
	out.Columns[dst.column] = destCol
	return out
}

// arrayMove removes the element at from and inserts it at to, where to is an
// index into the list after removal.
func arrayMove(ids []string, from, to int) []string {
	moved := ids[from]
	rest := make([]string, 0, len(ids))
	rest = append(rest, ids[:from]...)
	rest = append(rest, ids[from+1:]...)
	return insertAt(rest, to, moved)
}

// insertAt returns a new slice with id spliced in at idx, clamped to
// [0, len(ids)].
func insertAt(ids []string, idx int, id string) []string {
	idx = max(0, min(idx, len(ids)))
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:idx]...)
	out = append(out, id)
	return append(out, ids[idx:]...)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, s := range ids {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}
