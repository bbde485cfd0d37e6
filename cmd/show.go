package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays a task. ID may be the full id or a unique prefix of it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// showResult is the JSON shape of a shown task.
type showResult struct {
	board.Item
	Active bool                `json:"active"`
	Timer  *output.TimerStatus `json:"timer,omitempty"`
}

func runShow(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	b := a.sess.Board()
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	it, _ := findItem(b, id)

	a.sess.Poll(ctx)
	status := timerStatus(a.sess)

	switch outputFormat() {
	case output.FormatJSON:
		res := showResult{Item: it, Active: status.TaskID == id}
		if res.Active {
			res.Timer = &status
		}
		return output.JSON(os.Stdout, res)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, []board.Item{it}, status.TaskID)
		return nil
	}
	output.TaskDetail(os.Stdout, it, status)
	return nil
}
