package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/output"
)

var addCmd = &cobra.Command{
	Use:     "add CONTENT...",
	Aliases: []string{"create"},
	Short:   "Add a task to the queue",
	Long:    `Creates a task at the top of the Queue column.`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.sess.CreateTask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		it, _ := findItem(a.sess.Board(), t.ID)
		return output.JSON(os.Stdout, it)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, []board.Item{{Task: t, Column: board.DefaultColumn}}, "")
		return nil
	}
	output.Messagef(os.Stdout, "Created task %s: %s", board.ShortID(t.ID), t.Content)
	return nil
}
