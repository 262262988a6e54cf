// Package runner drives a level through the engine tick by tick and feeds
// every snapshot to the digest chain, the CSV trace writer and the run
// store. The CLI, the scenario harness and replay verification all run
// simulations through it.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/collision"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/store"
	"github.com/MZiaRAwan/PF-Project/internal/tracelog"
)

// DefaultMaxTicks bounds a run whose caller sets no limit.
const DefaultMaxTicks = 2000

// Hook runs between ticks, before the engine's next tick.
type Hook func(e *engine.Engine) error

// Config describes one run. Only Level is required.
type Config struct {
	Level *level.Level

	// MaxTicks stops the run early; <= 0 means DefaultMaxTicks.
	MaxTicks int64

	// Weather, Policy and Seed override the level's own values when set.
	Weather string
	Policy  string
	Seed    *uint64

	// Store receives the run header, per-tick rows and final metrics.
	Store    *store.Store
	NewRunID func() string

	// Trace receives CSV rows. The caller closes it.
	Trace *tracelog.Writer

	BeforeTick Hook
	OnTick     func(engine.Snapshot, string)

	Logger *slog.Logger
}

// Settings are the effective run options after overrides.
type Settings struct {
	Weather string `json:"weather"`
	Policy  string `json:"policy"`
	Seed    uint64 `json:"seed"`
}

// Result summarises a finished run.
type Result struct {
	RunID    string          `json:"run_id,omitempty"`
	Level    string          `json:"level"`
	Settings Settings        `json:"settings"`
	Ticks    int64           `json:"ticks"`
	Complete bool            `json:"complete"`
	Digest   string          `json:"digest"`
	Digests  []string        `json:"-"`
	Metrics  engine.Summary  `json:"metrics"`
	Final    engine.Snapshot `json:"-"`
}

// Resolve returns the effective settings and the engine options for them.
func (c Config) Resolve() (Settings, []engine.Option, error) {
	weather := c.Level.Weather
	if c.Weather != "" {
		weather = c.Weather
	}
	w, err := router.ParseWeather(weather)
	if err != nil {
		return Settings{}, nil, err
	}
	policy := c.Level.Policy
	if c.Policy != "" {
		policy = c.Policy
	}
	p, err := collision.ParsePolicy(policy)
	if err != nil {
		return Settings{}, nil, err
	}
	seed := c.Level.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	s := Settings{Weather: w.String(), Policy: p.String(), Seed: seed}
	return s, []engine.Option{engine.WithWeather(w), engine.WithPolicy(p), engine.WithSeed(seed)}, nil
}

// Name returns the level's name, falling back to its file name.
func Name(l *level.Level) string {
	if l.Name != "" {
		return l.Name
	}
	if l.Path() != "" {
		return strings.TrimSuffix(filepath.Base(l.Path()), filepath.Ext(l.Path()))
	}
	return "level"
}

// Run simulates until the level completes or MaxTicks ticks have run.
// Cancelling ctx stops the run between ticks; the stored run is then left
// unfinished.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Level == nil {
		return nil, fmt.Errorf("run: no level")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	maxTicks := cfg.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	settings, opts, err := cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	e, err := cfg.Level.Engine(append(opts, engine.WithLogger(log))...)
	if err != nil {
		return nil, err
	}

	res := &Result{Level: Name(cfg.Level), Settings: settings}
	var rec *store.Recorder
	if cfg.Store != nil {
		run := store.Run{
			LevelName:   res.Level,
			LevelFormat: cfg.Level.Format().String(),
			LevelText:   cfg.Level.Source(),
			LevelDigest: canon.LevelDigest(cfg.Level.Source()),
			Seed:        settings.Seed,
			Weather:     settings.Weather,
			Policy:      settings.Policy,
			MaxTicks:    maxTicks,
		}
		if cfg.NewRunID != nil {
			run.ID = cfg.NewRunID()
		}
		run, err = cfg.Store.CreateRun(ctx, run)
		if err != nil {
			return nil, err
		}
		res.RunID = run.ID
		rec = cfg.Store.Recorder(run.ID)
	}

	log.Info("run started",
		"level", res.Level,
		"run", res.RunID,
		"weather", settings.Weather,
		"policy", settings.Policy,
		"seed", settings.Seed,
		"max_ticks", maxTicks,
	)

	var chain canon.Chain
	for !e.IsComplete() && e.CurrentTick() < maxTicks {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("run stopped at tick %d: %w", e.CurrentTick(), err)
		}
		if cfg.BeforeTick != nil {
			if err := cfg.BeforeTick(e); err != nil {
				return res, fmt.Errorf("tick %d: %w", e.CurrentTick(), err)
			}
		}
		e.Tick()
		snap := e.Snapshot()
		digest, err := chain.Add(snap)
		if err != nil {
			return res, fmt.Errorf("tick %d: digest: %w", snap.Tick-1, err)
		}
		if cfg.Trace != nil {
			if err := cfg.Trace.Record(snap); err != nil {
				return res, fmt.Errorf("tick %d: %w", snap.Tick-1, err)
			}
		}
		if rec != nil {
			if err := rec.RecordTick(ctx, snap, digest); err != nil {
				return res, err
			}
		}
		if cfg.OnTick != nil {
			cfg.OnTick(snap, digest)
		}
		res.Final = snap
	}

	m := e.Metrics()
	res.Ticks = m.Ticks
	res.Complete = e.IsComplete()
	res.Digest = chain.Head()
	res.Digests = chain.Digests()
	res.Metrics = m.Summary()
	if res.Final.Tick == 0 {
		res.Final = e.Snapshot()
	}

	if rec != nil {
		if err := rec.Finish(ctx, m, res.Complete); err != nil {
			return res, err
		}
	}
	if cfg.Trace != nil {
		if err := cfg.Trace.Finish(m); err != nil {
			return res, err
		}
	}

	log.Info("run finished",
		"level", res.Level,
		"run", res.RunID,
		"ticks", res.Ticks,
		"complete", res.Complete,
		"arrivals", m.Arrivals,
		"crashes", m.Crashes,
	)
	return res, nil
}
