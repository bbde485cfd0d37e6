package store

import (
	"context"
	"fmt"

	"github.com/antopolskiy/taskt/internal/board"
)

// Document keys.
const (
	KeyTasks        = "tasks"
	KeyColumns      = "columns"
	KeyColumnOrder  = "columnOrder"
	KeyActiveTaskID = "activeTaskId"
)

// Snapshot is the persisted engine state.
type Snapshot struct {
	Board        board.Board
	ActiveTaskID string
}

// SaveSnapshot writes the full board and the active task id, then saves.
// activeID "" is stored as null.
func SaveSnapshot(ctx context.Context, ds DocStore, b board.Board, activeID string) error {
	var active *string
	if activeID != "" {
		active = &activeID
	}
	writes := []struct {
		key string
		v   any
	}{
		{KeyTasks, b.Tasks},
		{KeyColumns, b.Columns},
		{KeyColumnOrder, b.ColumnOrder},
		{KeyActiveTaskID, active},
	}
	for _, w := range writes {
		if err := ds.Set(ctx, w.key, w.v); err != nil {
			return fmt.Errorf("staging %s: %w", w.key, err)
		}
	}
	if err := ds.Save(ctx); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the persisted state. It reports false when no board
// has been saved yet.
func LoadSnapshot(ctx context.Context, ds DocStore) (Snapshot, bool, error) {
	var snap Snapshot
	b := &snap.Board

	found := 0
	for _, r := range []struct {
		key string
		v   any
	}{
		{KeyTasks, &b.Tasks},
		{KeyColumns, &b.Columns},
		{KeyColumnOrder, &b.ColumnOrder},
	} {
		ok, err := ds.Get(ctx, r.key, r.v)
		if err != nil {
			return Snapshot{}, false, err
		}
		if ok {
			found++
		}
	}
	if found < 3 {
		return Snapshot{}, false, nil
	}
	if b.Tasks == nil {
		b.Tasks = make(map[string]board.Task)
	}
	if b.Columns == nil {
		b.Columns = make(map[string]board.Column)
	}

	var active *string
	if _, err := ds.Get(ctx, KeyActiveTaskID, &active); err != nil {
		return Snapshot{}, false, err
	}
	if active != nil {
		snap.ActiveTaskID = *active
	}
	return snap, true, nil
}
