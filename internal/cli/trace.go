package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Train    int
	Switches bool
	Signals  bool
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      store.Run         `json:"run"`
	Trace    []store.TraceRow  `json:"trace"`
	Switches []store.SwitchRow `json:"switches,omitempty"`
	Signals  []store.SignalRow `json:"signals,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the per-tick trace of a stored run",
		Long: `Show where every train was at the end of every tick of a stored run,
optionally with the switch states and signal colors.

Examples:
  trainsim trace --db runs.db <run-id>
  trainsim trace --db runs.db --train 3 <run-id>
  trainsim trace --db runs.db --signals --format json <run-id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (default $"+EnvDB+")")
	cmd.Flags().IntVar(&opts.Train, "train", 0, "show only this train id")
	cmd.Flags().BoolVar(&opts.Switches, "switches", false, "include switch states")
	cmd.Flags().BoolVar(&opts.Signals, "signals", false, "include signal colors")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := commandContext(cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to load run", err)
	}

	result := TraceResult{Run: run}
	if cmd.Flags().Changed("train") {
		result.Trace, err = st.ReadTrainTrace(ctx, runID, opts.Train)
	} else {
		result.Trace, err = st.ReadTrace(ctx, runID)
	}
	if err != nil {
		return out.Fail(ExitCommandError, "failed to read trace", err)
	}
	if opts.Switches {
		if result.Switches, err = st.ReadSwitchLog(ctx, runID); err != nil {
			return out.Fail(ExitCommandError, "failed to read switch log", err)
		}
	}
	if opts.Signals {
		if result.Signals, err = st.ReadSignalLog(ctx, runID); err != nil {
			return out.Fail(ExitCommandError, "failed to read signal log", err)
		}
	}

	if out.JSON() {
		if result.Trace == nil {
			result.Trace = []store.TraceRow{}
		}
		return out.SuccessRun(run.ID, result)
	}
	printTrace(cmd.OutOrStdout(), result)
	return nil
}

func printTrace(w io.Writer, r TraceResult) {
	fmt.Fprintf(w, "Trace for Run: %s (%s)\n", r.Run.ID, r.Run.LevelName)
	fmt.Fprintf(w, "Status: %s after %d ticks\n", runStatus(r.Run), r.Run.Ticks)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Trains ===")
	if len(r.Trace) == 0 {
		fmt.Fprintln(w, "  (no rows)")
	}
	for _, row := range r.Trace {
		fmt.Fprintf(w, "  [%d] train %d %s %s %s\n", row.Tick, row.TrainID, row.Pos, row.Heading, row.State)
	}

	if len(r.Switches) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Switches ===")
		for _, row := range r.Switches {
			changed := ""
			if row.Changed {
				changed = " (flipped)"
			}
			fmt.Fprintf(w, "  [%d] %s %s state=%d%s\n", row.Tick, row.Letter, row.Mode, row.State, changed)
		}
	}

	if len(r.Signals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Signals ===")
		for _, row := range r.Signals {
			fmt.Fprintf(w, "  [%d] %s %s (%s)\n", row.Tick, row.Letter, row.Signal, row.Displayed)
		}
	}
}

func runStatus(r store.Run) string {
	switch {
	case !r.Finished:
		return "unfinished"
	case r.Complete:
		return "complete"
	default:
		return "incomplete"
	}
}
