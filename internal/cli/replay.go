package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/runner"
	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Latest   bool
}

// ReplayReport is the replay command's output.
type ReplayReport struct {
	RunID      string            `json:"run_id"`
	Level      string            `json:"level"`
	Stored     int               `json:"stored_ticks"`
	Replayed   int               `json:"replayed_ticks"`
	Match      bool              `json:"match"`
	Divergence *store.Divergence `json:"divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Re-simulate a stored run and verify its digests",
		Long: `Re-simulate a stored run from its stored level text and settings and
compare every tick digest against the stored chain.

Without a run id (or with --latest) the most recent run is replayed.

Exit codes:
  0 - Replay matches the stored run
  1 - Replay diverged from the stored run
  2 - Command error (database or run not found, level text changed, etc.)

Examples:
  trainsim replay --db runs.db
  trainsim replay --db runs.db 0192f0c4-7a4e-7cc1-9f5e-3c1b7d2e8a10
  trainsim replay --db runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runReplay(opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (default $"+EnvDB+")")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "replay the most recent run")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	log := opts.Logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	if runID != "" && opts.Latest {
		return NewExitError(ExitCommandError, "give a run id or --latest, not both")
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if runID == "" {
		latest, err := st.LatestRun(ctx)
		if err != nil {
			return out.Fail(ExitCommandError, "no run to replay", err)
		}
		runID = latest.ID
	}

	rr, err := runner.Replay(ctx, st, runID, nil, log)
	if err != nil {
		return out.Fail(ExitCommandError, fmt.Sprintf("failed to replay run %s", runID), err)
	}

	report := ReplayReport{
		RunID:      rr.Run.ID,
		Level:      rr.Run.LevelName,
		Stored:     rr.Stored,
		Replayed:   rr.Replayed,
		Match:      rr.Match(),
		Divergence: rr.Divergence,
	}

	if out.JSON() {
		if err := out.SuccessRun(report.RunID, report); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s (%s): %d stored ticks, %d replayed\n", report.RunID, report.Level, report.Stored, report.Replayed)
		if report.Match {
			fmt.Fprintln(w, "✓ Replay matches")
		} else {
			d := report.Divergence
			fmt.Fprintf(w, "✗ Diverged at tick %d\n", d.Tick)
			fmt.Fprintf(w, "  stored:   %s\n", d.Want)
			fmt.Fprintf(w, "  replayed: %s\n", d.Got)
		}
	}

	if !report.Match {
		return NewExitError(ExitFailure, fmt.Sprintf("replay of run %s diverged at tick %d", report.RunID, report.Divergence.Tick))
	}
	return nil
}

// openStore opens the database named by the flag or TRAINSIM_DB.
func openStore(flag string) (*store.Store, error) {
	path := envOr(flag, EnvDB, "")
	if path == "" {
		return nil, errors.New("no database: pass --db or set " + EnvDB)
	}
	return store.Open(path)
}
