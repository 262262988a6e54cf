package engine

import (
	"fmt"
	"sort"

	"github.com/MZiaRAwan/PF-Project/internal/collision"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// Layout is everything the level loader supplies before the first tick.
type Layout struct {
	// Lines are the grid rows; short rows are padded with empty cells.
	Lines []string
	// Switches configure the letters on the grid. Letters without a config
	// get a default switch.
	Switches []switches.Config
	// Trains is the schedule. A train with grid.NoPos as destination is
	// assigned one.
	Trains []train.Spec
}

// Engine is the simulation aggregate and its tick pipeline.
//
// INVARIANTS:
//   - trains is sorted by id and never reordered
//   - an arrived or crashed train never re-enters a phase
//   - metric counters only grow
//
// Engine is not safe for concurrent use; callers that share one (the HTTP
// observer) serialise access.
type Engine struct {
	layout Layout
	cfg    config

	// base is the grid as loaded. Every build starts from a clone, so
	// buffer edits never leak across Reset.
	base *grid.Grid

	grid     *grid.Grid
	bank     *switches.Bank
	router   *router.Router
	resolver *collision.Resolver
	trains   []*train.Train
	byID     map[int]*train.Train
	clock    *Clock
	metrics  Metrics

	// halts maps switch id to remaining halt ticks.
	halts map[int]int

	last TickReport
}

// TickReport lists what happened during one tick. Slices are in id order.
type TickReport struct {
	Tick      int64                `json:"tick"`
	Spawned   []int                `json:"spawned,omitempty"`
	Arrived   []int                `json:"arrived,omitempty"`
	Recovered []int                `json:"recovered,omitempty"`
	Crashed   []int                `json:"crashed,omitempty"`
	Queued    []int                `json:"queued,omitempty"`
	Flipped   []int                `json:"flipped,omitempty"`
	Halted    []int                `json:"halted,omitempty"`
	Conflicts []collision.Conflict `json:"conflicts,omitempty"`
}

// New builds an engine from a layout.
//
// The layout is kept so that Reset can rebuild the initial state. Options
// are applied once and survive Reset.
func New(layout Layout, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	base, err := grid.New(layout.Lines, 0)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	e := &Engine{layout: layout, cfg: cfg, base: base}
	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset restores the state New produced: loaded grid, fresh switches and
// trains, clock at zero, metrics cleared.
func (e *Engine) Reset() error {
	return e.build()
}

func (e *Engine) build() error {
	g := e.base.Clone()
	bank, err := switches.NewBank(e.layout.Switches, g.SwitchPositions())
	if err != nil {
		return fmt.Errorf("build switches: %w", err)
	}

	trains := make([]*train.Train, 0, len(e.layout.Trains))
	byID := make(map[int]*train.Train, len(e.layout.Trains))
	for _, spec := range e.layout.Trains {
		if _, dup := byID[spec.ID]; dup {
			return fmt.Errorf("train %d scheduled twice", spec.ID)
		}
		if !spec.Heading.Valid() {
			return fmt.Errorf("train %d: invalid heading %d", spec.ID, int(spec.Heading))
		}
		t := train.New(spec)
		trains = append(trains, t)
		byID[spec.ID] = t
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].ID < trains[j].ID })
	assignDestinations(g, trains)

	e.grid = g
	e.bank = bank
	e.router = router.New(g, bank,
		router.WithWeather(e.cfg.weather),
		router.WithSeed(e.cfg.seed),
		router.WithStrictProgress(e.cfg.strict),
	)
	e.resolver = collision.New(g, e.cfg.policy)
	e.trains = trains
	e.byID = byID
	e.clock = NewClock()
	e.metrics = Metrics{}
	e.halts = make(map[int]int)
	e.last = TickReport{Tick: -1}
	// Signals start from the empty grid so the first tick reads a defined
	// color.
	e.bank.DeriveSignals(nil, nil, false)
	return nil
}

// assignDestinations gives every train without a destination one of the
// grid's destination tiles, round-robin in spawn order, skipping the tile
// the train starts on when another exists. With no destination tiles a train
// keeps its start cell as destination.
func assignDestinations(g *grid.Grid, trains []*train.Train) {
	var pending []*train.Train
	for _, t := range trains {
		if t.NoDest() {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].SpawnTick != pending[j].SpawnTick {
			return pending[i].SpawnTick < pending[j].SpawnTick
		}
		return pending[i].ID < pending[j].ID
	})

	dests := g.Find(grid.Destination)
	next := 0
	for _, t := range pending {
		if len(dests) == 0 {
			t.Dest = t.Start
			continue
		}
		d := dests[next%len(dests)]
		if d == t.Start && len(dests) > 1 {
			next++
			d = dests[next%len(dests)]
		}
		t.Dest = d
		next++
	}
}

// Tick runs one full tick and returns what happened in it.
func (e *Engine) Tick() TickReport {
	tick := e.clock.Current()
	rep := TickReport{Tick: tick}

	e.bank.BeginTick()
	rep.Spawned = e.spawn(tick)

	onGrid := e.onGrid()
	for _, t := range onGrid {
		e.router.Route(t, tick)
	}
	rep.Halted = e.applyHalts(onGrid)
	e.countEntries(onGrid)
	rep.Queued = e.bank.QueueFlips()

	e.move(onGrid, &rep)

	rep.Flipped = e.bank.ApplyDeferredFlips()
	e.metrics.SwitchFlips += len(rep.Flipped)
	for _, id := range rep.Flipped {
		sw, _ := e.bank.Get(id)
		e.cfg.log.Debug("switch flipped",
			"tick", tick,
			"switch", sw.Letter(),
			"state", sw.State,
			"label", sw.Label(),
		)
	}

	e.arrivals(tick, &rep)
	e.countDownHalts()
	e.deriveSignals()

	e.clock.Next()
	e.last = rep
	return rep
}

// IsComplete reports whether no train is on the grid and none is still
// scheduled.
func (e *Engine) IsComplete() bool {
	for _, t := range e.trains {
		if t.State == train.Scheduled || t.OnGrid() {
			return false
		}
	}
	return true
}

// Run ticks until the simulation completes or maxTicks ticks have run in
// this call, and returns the number of ticks run. maxTicks <= 0 means no
// limit.
func (e *Engine) Run(maxTicks int64) int64 {
	var n int64
	for !e.IsComplete() && (maxTicks <= 0 || n < maxTicks) {
		e.Tick()
		n++
	}
	return n
}

// CurrentTick returns the number of ticks run so far.
func (e *Engine) CurrentTick() int64 {
	return e.clock.Current()
}

// LastReport returns the report of the most recent tick. Its Tick is -1
// before the first tick.
func (e *Engine) LastReport() TickReport {
	return e.last
}

// Metrics returns the counters, including the current tick count and buffer
// tile count.
func (e *Engine) Metrics() Metrics {
	m := e.metrics
	m.Ticks = e.clock.Current()
	m.Buffers = e.grid.BufferCount()
	return m
}

// Train returns the train with the given id.
func (e *Engine) Train(id int) (*train.Train, bool) {
	t, ok := e.byID[id]
	return t, ok
}

// Switch returns the switch with the given id.
func (e *Engine) Switch(id int) (*switches.Switch, bool) {
	return e.bank.Get(id)
}

// Policy returns the collision policy in effect.
func (e *Engine) Policy() collision.Policy {
	return e.resolver.Policy()
}

// Grid returns the live grid. Callers must treat it as read-only and use
// ToggleBufferTile to edit it.
func (e *Engine) Grid() *grid.Grid {
	return e.grid
}

func (e *Engine) onGrid() []*train.Train {
	var out []*train.Train
	for _, t := range e.trains {
		if t.OnGrid() {
			out = append(out, t)
		}
	}
	return out
}
