package level

import (
	"fmt"

	"github.com/MZiaRAwan/PF-Project/internal/collision"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// DefaultHeading is used for trains that do not name one.
const DefaultHeading = grid.Right

// Layout builds the engine inputs. Map and placement problems are
// E_LEVEL_GRID errors.
func (l *Level) Layout() (engine.Layout, error) {
	g, err := grid.New(l.Map, l.Cols)
	if err != nil {
		return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, err, "%v", err)
	}
	lines := g.Lines()

	cfgs := make([]switches.Config, 0, len(l.Switches))
	seen := make(map[int]bool)
	for _, def := range l.Switches {
		cfg, err := def.config()
		if err != nil {
			return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, err, "switch %s: %v", def.Letter, err)
		}
		if seen[cfg.ID] {
			return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, nil, "switch %s configured twice", def.Letter)
		}
		seen[cfg.ID] = true
		cfgs = append(cfgs, cfg)
	}

	specs := make([]train.Spec, 0, len(l.Trains))
	ids := make(map[int]bool)
	for i, def := range l.Trains {
		spec, err := def.spec(i)
		if err != nil {
			return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, err, "train %d: %v", i, err)
		}
		if ids[spec.ID] {
			return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, nil, "train id %d scheduled twice", spec.ID)
		}
		ids[spec.ID] = true
		if !g.Contains(spec.Start) {
			return engine.Layout{}, loadErr(ErrCodeGrid, l.path, 0, grid.ErrOutOfBounds,
				"train %d: start %s outside %dx%d map", spec.ID, spec.Start, g.Rows(), g.Cols())
		}
		specs = append(specs, spec)
	}

	return engine.Layout{Lines: lines, Switches: cfgs, Trains: specs}, nil
}

// Options returns the engine options the level selects: seed, weather,
// collision policy and recovery.
func (l *Level) Options() ([]engine.Option, error) {
	w, err := router.ParseWeather(l.Weather)
	if err != nil {
		return nil, loadErr(ErrCodeSchema, l.path, 0, err, "%v", err)
	}
	p, err := collision.ParsePolicy(l.Policy)
	if err != nil {
		return nil, loadErr(ErrCodeSchema, l.path, 0, err, "%v", err)
	}
	opts := []engine.Option{
		engine.WithSeed(l.Seed),
		engine.WithWeather(w),
		engine.WithPolicy(p),
	}
	if l.Recovery != nil {
		opts = append(opts, engine.WithRecovery(*l.Recovery))
	}
	if l.Limits != nil {
		opts = append(opts, engine.WithLimits(l.Limits.limits()))
	}
	if l.StrictProgress != nil {
		opts = append(opts, engine.WithStrictProgress(*l.StrictProgress))
	}
	return opts, nil
}

func (d LimitsDef) limits() train.Limits {
	l := train.DefaultLimits
	if d.Repeat > 0 {
		l.Repeat = d.Repeat
	}
	if d.Oscillation > 0 {
		l.Oscillation = d.Oscillation
	}
	if d.NoProgress > 0 {
		l.NoProgress = d.NoProgress
	}
	if d.Lifetime > 0 {
		l.Lifetime = d.Lifetime
	}
	if d.Close > 0 {
		l.Close = d.Close
	}
	return l
}

// Engine builds an engine from the level. extra options are applied after
// the level's own, so callers can override weather or seed.
func (l *Level) Engine(extra ...engine.Option) (*engine.Engine, error) {
	layout, err := l.Layout()
	if err != nil {
		return nil, err
	}
	opts, err := l.Options()
	if err != nil {
		return nil, err
	}
	e, err := engine.New(layout, append(opts, extra...)...)
	if err != nil {
		return nil, loadErr(ErrCodeGrid, l.path, 0, err, "%v", err)
	}
	return e, nil
}

func (d SwitchDef) config() (switches.Config, error) {
	id, ok := grid.SwitchID(d.Letter)
	if !ok {
		return switches.Config{}, fmt.Errorf("invalid letter %q", d.Letter)
	}
	mode, err := switches.ParseMode(d.Mode)
	if err != nil {
		return switches.Config{}, err
	}
	cfg := switches.Config{
		ID:              id,
		Mode:            mode,
		GlobalThreshold: d.Global,
		InitialState:    d.Init,
		Labels:          [2]string{switches.LabelStraight, switches.LabelTurn},
	}
	if t := d.Thresholds; t != nil {
		cfg.Thresholds[grid.Up] = t.Up
		cfg.Thresholds[grid.Right] = t.Right
		cfg.Thresholds[grid.Down] = t.Down
		cfg.Thresholds[grid.Left] = t.Left
		if mode == switches.Global && cfg.GlobalThreshold == 0 {
			cfg.GlobalThreshold = t.Up
		}
	}
	if len(d.Labels) == 2 {
		cfg.Labels = [2]string{d.Labels[0], d.Labels[1]}
	}
	return cfg, nil
}

func (d TrainDef) spec(index int) (train.Spec, error) {
	heading := DefaultHeading
	if d.Dir != "" {
		h, err := grid.ParseDirection(d.Dir)
		if err != nil {
			return train.Spec{}, err
		}
		heading = h
	}
	id := index
	if d.ID != nil {
		id = *d.ID
	}
	dest := grid.NoPos
	if d.Dest != nil {
		dest = *d.Dest
	}
	return train.Spec{
		ID:        id,
		SpawnTick: d.Spawn,
		Start:     d.Start,
		Heading:   heading,
		Dest:      dest,
		Color:     d.Color,
	}, nil
}
