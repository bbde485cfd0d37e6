package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/output"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show the board",
	Long:    `Prints every column with its tasks in order. The active task is marked.`,
	Args:    cobra.NoArgs,
	RunE:    runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cols := output.Columns(a.sess.Board(), a.sess.ActiveTaskID())
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, cols)
	case output.FormatCompact:
		output.BoardCompact(os.Stdout, cols)
		return nil
	}
	output.BoardTable(os.Stdout, cols)
	return nil
}
