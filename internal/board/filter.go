package board

import (
	"slices"
	"strings"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Columns []string
	Search  string // case-insensitive substring match on content
}

// Item is a task together with its placement on the board.
type Item struct {
	Task
	Column   string `json:"column"`
	Position int    `json:"position"`
}

// Filter returns the board's tasks matching all criteria, in board order.
func Filter(b Board, opts FilterOptions) []Item {
	search := strings.ToLower(opts.Search)
	var result []Item
	for _, colID := range b.ColumnOrder {
		if len(opts.Columns) > 0 && !slices.Contains(opts.Columns, colID) {
			continue
		}
		for pos, id := range b.Columns[colID].TaskIDs {
			t, ok := b.Tasks[id]
			if !ok {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(t.Content), search) {
				continue
			}
			result = append(result, Item{Task: t, Column: colID, Position: pos})
		}
	}
	return result
}
