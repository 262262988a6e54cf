package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/runner"
	"github.com/MZiaRAwan/PF-Project/internal/store"
	"github.com/MZiaRAwan/PF-Project/internal/tracelog"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database        string
	OutDir          string
	MaxTicks        int64
	Weather         string
	Policy          string
	Seed            uint64
	RequireComplete bool

	// NewRunID overrides run id generation (for testing).
	NewRunID func() string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <level>",
		Short: "Simulate a level to completion",
		Long: `Simulate a level until every train has arrived or crashed, or until
the tick limit.

With --db the run is stored (level text, settings, per-tick trace and
digests) and can later be replayed. With --out the CSV logs and metrics.txt
are written to a directory.

Exit codes:
  0 - Run finished
  1 - Run hit the tick limit with --require-complete
  2 - Command error (bad level, database error, etc.)

Examples:
  trainsim run levels/junction.yaml
  trainsim run --db runs.db --out out/ levels/junction.yaml
  trainsim run --weather FOG --policy crash --seed 7 levels/legacy.lvl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevel(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to store the run in (default $"+EnvDB+")")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "directory for trace.csv, switches.csv, signals.csv and metrics.txt")
	cmd.Flags().Int64Var(&opts.MaxTicks, "max-ticks", 0, "tick limit (default $"+EnvMaxTicks+" or 2000)")
	cmd.Flags().StringVar(&opts.Weather, "weather", "", "override weather (CLEAR|RAIN|FOG)")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "override collision policy (wait|crash)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "override the level seed")
	cmd.Flags().BoolVar(&opts.RequireComplete, "require-complete", false, "exit 1 if the run hits the tick limit")

	return cmd
}

func runLevel(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	log := opts.Logger(cmd.ErrOrStderr())

	lvl, err := level.Load(path)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to load level", err)
	}
	limit, err := maxTicks(opts.MaxTicks)
	if err != nil {
		return out.Fail(ExitCommandError, "invalid tick limit", err)
	}

	cfg := runner.Config{
		Level:    lvl,
		MaxTicks: limit,
		Weather:  opts.Weather,
		Policy:   opts.Policy,
		NewRunID: opts.NewRunID,
		Logger:   log,
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		cfg.Seed = &seed
	}

	if db := envOr(opts.Database, EnvDB, ""); db != "" {
		st, err := store.Open(db)
		if err != nil {
			return out.Fail(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		cfg.Store = st
	}

	if opts.OutDir != "" {
		tw, err := tracelog.Create(opts.OutDir)
		if err != nil {
			return out.Fail(ExitCommandError, "failed to create output files", err)
		}
		defer func() {
			if closeErr := tw.Close(); closeErr != nil {
				log.Error("error closing trace files", "error", closeErr)
			}
		}()
		cfg.Trace = tw
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, cfg)
	if err != nil {
		return out.Fail(ExitCommandError, "run failed", err)
	}

	if out.JSON() {
		if err := out.SuccessRun(res.RunID, res); err != nil {
			return err
		}
	} else if err := printResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if opts.RequireComplete && !res.Complete {
		return NewExitError(ExitFailure, fmt.Sprintf("run stopped at tick limit %d before completion", limit))
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printResult(w io.Writer, res *runner.Result) error {
	status := "complete"
	if !res.Complete {
		status = "incomplete"
	}
	fmt.Fprintf(w, "Level %s: %s after %d ticks\n", res.Level, status, res.Ticks)
	if res.RunID != "" {
		fmt.Fprintf(w, "Run:      %s\n", res.RunID)
	}
	fmt.Fprintf(w, "Settings: weather=%s policy=%s seed=%d\n", res.Settings.Weather, res.Settings.Policy, res.Settings.Seed)
	fmt.Fprintf(w, "Digest:   %s\n", res.Digest)
	fmt.Fprintln(w)
	return tracelog.WriteMetrics(w, res.Metrics)
}
