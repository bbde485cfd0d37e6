package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/timer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active task and its elapsed time",
	Long: `Shows the timer phase (idle, selected, running), the active task and its
elapsed time. With --watch, keeps printing the elapsed time every second
while the timer runs, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolP("watch", "w", false, "refresh every second while the timer runs")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	a.sess.Poll(ctx)
	if err := printStatus(timerStatus(a.sess)); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch || a.sess.Phase() != timer.Running {
		return nil
	}
	return watchStatus(ctx, a)
}

// watchStatus prints a status line for every poll result until ctx ends.
func watchStatus(ctx context.Context, a *app) error {
	var (
		mu      sync.Mutex
		printed error
	)
	sink := func(e timer.Elapsed) {
		if !a.sess.ApplyElapsed(e) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if err := printStatus(timerStatus(a.sess)); err != nil && printed == nil {
			printed = err
		}
	}

	p := timer.NewPoller(a.auth, sink, logger)
	p.Sync(ctx, a.sess.Phase())
	<-ctx.Done()
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	return printed
}
