package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/config"
	"github.com/antopolskiy/taskt/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the taskt data directory",
	Long: `Creates the data directory with a default config.yml and an empty board.
The directory is taken from --dir, then $TASKT_DIR, then the user config
directory.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("backend", config.DefaultBackend, "store backend (json, sqlite, redis)")
	initCmd.Flags().String("redis-url", "", "redis URL for the redis backend")
	initCmd.Flags().String("authority", config.DefaultAuthorityMode, "timer authority mode (http, local)")
	initCmd.Flags().String("addr", config.DefaultAuthorityAddr, "timer authority address for http mode")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir, err := config.ResolveDir(flagDir)
	if err != nil {
		return err
	}
	cfg, err := config.Init(dir)
	if err != nil {
		return err
	}

	cfg.Store.Backend, _ = cmd.Flags().GetString("backend")
	if v, _ := cmd.Flags().GetString("redis-url"); v != "" {
		cfg.Store.RedisURL = v
	}
	cfg.Authority.Mode, _ = cmd.Flags().GetString("authority")
	cfg.Authority.Addr, _ = cmd.Flags().GetString("addr")
	if err := cfg.Validate(); err != nil {
		_ = os.Remove(cfg.ConfigPath())
		return clierr.New(clierr.InvalidConfig, err.Error())
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	// Opening the session writes the empty board.
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":    "initialized",
			"dir":       cfg.Dir(),
			"backend":   cfg.Store.Backend,
			"authority": cfg.Authority.Mode,
		})
	}
	output.Messagef(os.Stdout, "Initialized taskt in %s (store: %s, authority: %s)",
		cfg.Dir(), cfg.Store.Backend, cfg.Authority.Mode)
	return nil
}
