package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle",
	Aliases: []string{"play", "pause"},
	Short:   "Start or pause the active task's timer",
	Long: `Starts the timer of the active task, or pauses it when it is running.
In local authority mode the timer only lives as long as the process, so use
the interactive widget or run 'taskt serve' and switch to http mode.`,
	Args: cobra.NoArgs,
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sess.TogglePlayPause(ctx); err != nil {
		return err
	}
	return printStatus(timerStatus(a.sess))
}
