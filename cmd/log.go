package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/output"
)

const dateLayout = "2006-01-02"

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show activity log",
	Long:  `Displays the activity log of board and timer changes (create, delete, move, select, start, pause, idle).`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().String("since", "", "show entries after this date (YYYY-MM-DD)")
	logCmd.Flags().Int("limit", 0, "maximum number of entries to show (most recent)")
	logCmd.Flags().String("action", "", "filter by action type")
	logCmd.Flags().String("task", "", "filter by task ID (full or prefix)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := board.LogFilterOptions{}
	if v, _ := cmd.Flags().GetString("since"); v != "" {
		d, parseErr := time.ParseInLocation(dateLayout, v, time.Local)
		if parseErr != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid --since date %q (want YYYY-MM-DD)", v)
		}
		opts.Since = d
	}
	if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
		opts.Limit = v
	}
	if v, _ := cmd.Flags().GetString("action"); v != "" {
		opts.Action = v
	}
	if v, _ := cmd.Flags().GetString("task"); v != "" {
		// Deleted tasks are no longer on the board; fall back to the raw id.
		opts.TaskID = v
		if id, ok, _ := a.sess.Board().ResolveTaskID(v); ok {
			opts.TaskID = id
		}
	}

	entries, err := board.ReadLog(a.cfg.Dir(), opts)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []board.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.ActivityLogCompact(os.Stdout, entries)
		return nil
	}
	output.ActivityLogTable(os.Stdout, entries)
	return nil
}
