package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/authority/httpapi"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/config"
	"github.com/antopolskiy/taskt/internal/output"
	"github.com/antopolskiy/taskt/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config, the stored board and the timer authority",
	Long: `Validates config.yml, loads the stored board and checks its invariants,
and pings the timer authority in http mode. Exits 1 when any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// check is one doctor finding.
type check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := []check{{Name: "config", OK: true, Detail: cfg.ConfigPath()}}
	checks = append(checks, checkStore(ctx, cfg))
	checks = append(checks, checkAuthority(ctx, cfg))

	failed := false
	for _, c := range checks {
		failed = failed || !c.OK
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, checks); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			mark := "ok"
			if !c.OK {
				mark = "FAIL"
			}
			output.Messagef(os.Stdout, "%-10s %-4s %s", c.Name, mark, c.Detail)
		}
	}
	if failed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func checkStore(ctx context.Context, cfg *config.Config) check {
	c := check{Name: "store"}
	ds, err := store.Open(ctx, cfg)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	defer ds.Close()

	snap, found, err := store.LoadSnapshot(ctx, ds)
	switch {
	case err != nil:
		c.Detail = err.Error()
	case !found:
		c.OK = true
		c.Detail = "no board saved yet"
	default:
		if err := snap.Board.Validate(); err != nil {
			c.Detail = err.Error()
			return c
		}
		if _, ok := snap.Board.Task(snap.ActiveTaskID); snap.ActiveTaskID != "" && !ok {
			c.Detail = fmt.Sprintf("active task %q does not exist", snap.ActiveTaskID)
			return c
		}
		c.OK = true
		c.Detail = fmt.Sprintf("%s, %d tasks", cfg.Store.Backend, len(snap.Board.Tasks))
	}
	return c
}

func checkAuthority(ctx context.Context, cfg *config.Config) check {
	c := check{Name: "authority", OK: true, Detail: "local (in-process)"}
	if cfg.Authority.Mode != config.AuthorityHTTP {
		return c
	}
	client := httpapi.NewClient(cfg.Authority.Addr, cfg.AuthorityTimeout())
	if err := client.Ping(ctx); err != nil {
		c.OK = false
		c.Detail = fmt.Sprintf("%s unreachable: %v (run 'taskt serve')", cfg.Authority.Addr, err)
		return c
	}
	c.Detail = "http " + cfg.Authority.Addr
	return c
}
