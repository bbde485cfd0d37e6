package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks in board order with optional column and text filters.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSlice("column", nil, "filter by column id (comma-separated)")
	listCmd.Flags().String("search", "", "case-insensitive substring filter on content")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	columns, _ := cmd.Flags().GetStringSlice("column")
	search, _ := cmd.Flags().GetString("search")

	b := a.sess.Board()
	for _, c := range columns {
		if _, ok := b.Columns[c]; !ok {
			return clierr.Newf(clierr.ColumnNotFound, "unknown column %q", c).
				WithDetails(map[string]any{"column": c, "columns": b.ColumnOrder})
		}
	}

	items := board.Filter(b, board.FilterOptions{Columns: columns, Search: search})
	activeID := a.sess.ActiveTaskID()

	switch outputFormat() {
	case output.FormatJSON:
		if items == nil {
			items = []board.Item{}
		}
		return output.JSON(os.Stdout, items)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, items, activeID)
		return nil
	}
	output.TaskTable(os.Stdout, items, activeID)
	return nil
}
