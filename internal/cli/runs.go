package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List the runs stored in a database, oldest first.

Examples:
  trainsim runs --db runs.db
  trainsim runs --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (default $"+EnvDB+")")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd))
	if err != nil {
		return out.Fail(ExitCommandError, "failed to list runs", err)
	}

	if out.JSON() {
		if runs == nil {
			runs = []store.Run{}
		}
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-16s %-10s %5d ticks  %s/%s seed=%d\n",
			r.ID, r.LevelName, runStatus(r), r.Ticks, r.Weather, r.Policy, r.Seed)
	}
	return nil
}
