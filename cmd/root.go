// Package cmd implements the taskt CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/authority"
	"github.com/antopolskiy/taskt/internal/authority/httpapi"
	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/config"
	"github.com/antopolskiy/taskt/internal/output"
	"github.com/antopolskiy/taskt/internal/session"
	"github.com/antopolskiy/taskt/internal/store"
	"github.com/antopolskiy/taskt/internal/timer"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
	flagVerbose bool
)

const (
	envDebug    = "TASKT_DEBUG"
	tuiLogFile  = "taskt.log"
	logFileMode = 0o600
)

// logger is the process-wide diagnostic logger. User-facing output never
// goes through it.
var logger = newLogger()

var rootCmd = &cobra.Command{
	Use:   "taskt",
	Short: "A kanban board with a single active-task timer",
	Long: `taskt keeps a small kanban board (Queue, In Progress, Review, Done) and
times the one task you are working on. Moving a task into In Progress selects
it; play/pause starts and stops its timer.

Run without a subcommand on a terminal to open the interactive widget.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
		logger.SetLevel(logLevel(nil))
	},
	Args: cobra.NoArgs,
	RunE: runDefault,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the taskt data directory (env "+config.EnvDir+")")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log diagnostics at info level")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv(output.EnvOutput) == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

func runDefault(cmd *cobra.Command, args []string) error {
	if output.IsTerminal() {
		return runTUI(cmd, args)
	}
	return runBoard(cmd, args)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// logLevel combines the configured level with --verbose and TASKT_DEBUG.
func logLevel(cfg *config.Config) logrus.Level {
	level := logrus.WarnLevel
	if cfg != nil {
		level = cfg.LogLevel()
	}
	if flagVerbose && level < logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	if os.Getenv(envDebug) == "1" {
		level = logrus.DebugLevel
	}
	return level
}

// configureLogging points the logger at the configured log file. With
// forceFile set and no file configured, it logs to taskt.log in the data
// directory. The returned func restores stderr.
func configureLogging(cfg *config.Config, forceFile bool) (func(), error) {
	logger.SetLevel(logLevel(cfg))

	path := cfg.LogPath()
	if path == "" && forceFile {
		path = filepath.Join(cfg.Dir(), tuiLogFile)
	}
	if path == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// loadConfig resolves the data directory and loads its config, writing the
// defaults on first run.
func loadConfig() (*config.Config, error) {
	dir, err := config.ResolveDir(flagDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrInit(dir)
	if errors.Is(err, config.ErrInvalid) {
		return nil, clierr.New(clierr.InvalidConfig, err.Error())
	}
	return cfg, err
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// newAuthority returns the timer authority selected by cfg.
func newAuthority(cfg *config.Config) timer.Authority {
	if cfg.Authority.Mode == config.AuthorityLocal {
		return authority.NewService()
	}
	return httpapi.NewClient(cfg.Authority.Addr, cfg.AuthorityTimeout())
}

// app bundles the collaborators a command works with.
type app struct {
	cfg   *config.Config
	store store.DocStore
	auth  timer.Authority
	sess  *session.Session
	done  func()
}

// openApp loads the config, opens the store and the session over it.
func openApp(ctx context.Context, forceLogFile bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	restore, err := configureLogging(cfg, forceLogFile)
	if err != nil {
		return nil, err
	}

	ds, err := store.Open(ctx, cfg)
	if err != nil {
		restore()
		return nil, clierr.Newf(clierr.StoreError, "opening %s store: %v", cfg.Store.Backend, err)
	}

	auth := newAuthority(cfg)
	sess, err := session.Open(ctx, session.Deps{
		Store:     ds,
		Authority: auth,
		Logger:    logger.WithField("component", "session"),
		LogDir:    cfg.Dir(),
	})
	if err != nil {
		_ = ds.Close()
		restore()
		return nil, err
	}
	return &app{cfg: cfg, store: ds, auth: auth, sess: sess, done: restore}, nil
}

// Close releases the store and restores logging.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.WithError(err).Warn("closing store")
	}
	a.done()
}

// resolveTask maps a full or abbreviated task ID to a task on b.
func resolveTask(b board.Board, ref string) (string, error) {
	id, ok, err := b.ResolveTaskID(ref)
	if errors.Is(err, board.ErrAmbiguous) {
		return "", clierr.Newf(clierr.InvalidTaskID, "task id %q is ambiguous", ref).
			WithDetails(map[string]any{"id": ref})
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", clierr.Newf(clierr.TaskNotFound, "task %q not found", ref).
			WithDetails(map[string]any{"id": ref})
	}
	return id, nil
}

// timerStatus renders the session's timer state.
func timerStatus(sess *session.Session) output.TimerStatus {
	snap := sess.Snapshot()
	st := output.TimerStatus{
		Phase:     snap.Phase().String(),
		ElapsedMs: snap.Display(),
		Elapsed:   output.FormatElapsed(snap.Display()),
	}
	if t, ok := snap.ActiveTask(); ok {
		st.TaskID = t.ID
		st.Content = t.Content
		st.Column, _ = snap.Board.FindColumnOf(t.ID)
	}
	return st
}

// findItem returns id with its board placement.
func findItem(b board.Board, id string) (board.Item, bool) {
	for _, it := range board.Filter(b, board.FilterOptions{}) {
		if it.ID == id {
			return it, true
		}
	}
	return board.Item{}, false
}
