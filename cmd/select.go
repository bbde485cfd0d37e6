package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/output"
)

var selectCmd = &cobra.Command{
	Use:   "select ID",
	Short: "Make an in-progress task the active task",
	Long: `Selects a task in In Progress as the active task. A running timer on
another task is stopped first; the new task starts paused.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

func runSelect(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveTask(a.sess.Board(), args[0])
	if err != nil {
		return err
	}
	if err := a.sess.Select(ctx, id); err != nil {
		return err
	}
	return printStatus(timerStatus(a.sess))
}

// printStatus writes s in the selected output format.
func printStatus(s output.TimerStatus) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, s)
	case output.FormatCompact:
		output.StatusCompact(os.Stdout, s)
		return nil
	}
	output.StatusTable(os.Stdout, s)
	return nil
}
