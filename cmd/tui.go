package cmd

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/config"
	"github.com/antopolskiy/taskt/internal/tui"
	"github.com/antopolskiy/taskt/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive widget",
	Long: `Launches the compact timer widget. Press e to expand it into the full
board, space to drag a card, p to play or pause, ? for help.

With the json store the board live-reloads when another taskt process
changes it. Diagnostics go to taskt.log in the data directory unless
log.file is configured.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Bool("board", false, "start in the expanded board view")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []tui.Option
	if expanded, _ := cmd.Flags().GetBool("board"); expanded {
		opts = append(opts, tui.Expanded())
	}
	model := tui.NewBoard(ctx, a.sess, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if a.cfg.Store.Backend == config.BackendJSON {
		go startTUIWatcher(ctx, a.cfg.StorePath(), p)
	}

	_, err = p.Run()

	// A local authority dies with the process; bank the running segment.
	if a.cfg.Authority.Mode == config.AuthorityLocal {
		if perr := a.sess.PauseRunning(context.Background()); perr != nil {
			logger.WithError(perr).Warn("pausing timer on exit")
		}
	}
	return err
}

func startTUIWatcher(ctx context.Context, storePath string, p *tea.Program) {
	w, err := watcher.New([]string{filepath.Dir(storePath)}, func() {
		p.Send(tui.ReloadMsg{})
	}, watcher.OnlyNames(filepath.Base(storePath)))
	if err != nil {
		logger.WithError(err).Warn("live reload disabled")
		return
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		logger.WithError(err).Debug("watcher error")
	})
}
