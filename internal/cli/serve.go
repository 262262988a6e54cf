package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/observer"
	"github.com/MZiaRAwan/PF-Project/internal/runner"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Interval time.Duration
	Paused   bool
	Origins  []string
	MaxTicks int64
	Weather  string
	Policy   string
	Seed     uint64
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <level>",
		Short: "Serve a live simulation over HTTP",
		Long: `Run a level in real time and expose its state over HTTP.

The simulation advances one tick per --interval (or only on POST /tick with
--paused). Buffers, switch toggles and emergency halts can be applied
between ticks. With --db the stored runs are browsable under /runs.

Endpoints:
  GET  /health /state /metrics /report
  POST /tick /reset /buffers
  POST /switches/{letter}/toggle /switches/{letter}/halt
  GET  /runs /runs/{id} /runs/{id}/metrics

Examples:
  trainsim serve levels/junction.yaml
  trainsim serve --addr :9090 --interval 100ms levels/junction.yaml
  trainsim serve --paused --db runs.db levels/junction.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $"+EnvAddr+" or "+DefaultAddr+")")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database with stored runs (default $"+EnvDB+")")
	cmd.Flags().DurationVar(&opts.Interval, "interval", observer.DefaultInterval, "time between ticks")
	cmd.Flags().BoolVar(&opts.Paused, "paused", false, "advance only on POST /tick")
	cmd.Flags().StringSliceVar(&opts.Origins, "allow-origin", []string{"*"}, "CORS allowed origins")
	cmd.Flags().Int64Var(&opts.MaxTicks, "max-ticks", 0, "stop ticking after this many ticks (default $"+EnvMaxTicks+" or 2000)")
	cmd.Flags().StringVar(&opts.Weather, "weather", "", "override weather (CLEAR|RAIN|FOG)")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "override collision policy (wait|crash)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "override the level seed")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
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
	cfg := runner.Config{Level: lvl, Weather: opts.Weather, Policy: opts.Policy}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		cfg.Seed = &seed
	}
	settings, engOpts, err := cfg.Resolve()
	if err != nil {
		return out.Fail(ExitCommandError, "invalid settings", err)
	}
	e, err := lvl.Engine(append(engOpts, engine.WithLogger(log))...)
	if err != nil {
		return out.Fail(ExitCommandError, "failed to build level", err)
	}

	srvOpts := []observer.Option{
		observer.WithLogger(log),
		observer.WithInterval(opts.Interval),
		observer.WithAllowedOrigins(opts.Origins...),
		observer.WithMaxTicks(limit),
	}
	if envOr(opts.Database, EnvDB, "") != "" {
		st, err := openStore(opts.Database)
		if err != nil {
			return out.Fail(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		srvOpts = append(srvOpts, observer.WithStore(st))
	}
	obs := observer.New(e, srvOpts...)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := envOr(opts.Addr, EnvAddr, DefaultAddr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           obs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	log.Info("observer listening",
		"addr", addr,
		"level", runner.Name(lvl),
		"weather", settings.Weather,
		"policy", settings.Policy,
		"seed", settings.Seed,
		"paused", opts.Paused,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s. Press Ctrl-C to stop.\n", runner.Name(lvl), addr)

	if !opts.Paused {
		go func() {
			if err := obs.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("simulation loop stopped", "error", err)
			}
		}()
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return out.Fail(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	log.Info("observer stopped")
	return nil
}
