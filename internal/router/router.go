// Package router computes each train's proposed move for one tick.
//
// Routing reads the grid, the switch bank and the train itself. It never
// looks at other trains: conflicts between proposals are the collision
// resolver's job. Rules apply in a fixed order:
//
//  1. destination short-circuit
//  2. safety-buffer pause/release
//  3. rain pause
//  4. tile rule for the current cell
//  5. invalid-move fallback
//  6. progress guard
package router

import (
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// Router proposes moves against one grid and switch bank.
type Router struct {
	grid    *grid.Grid
	bank    *switches.Bank
	weather Weather
	seed    uint64
	strict  bool
}

// Option configures a Router.
type Option func(*Router)

// WithWeather sets the weather. Default CLEAR.
func WithWeather(w Weather) Option {
	return func(r *Router) { r.weather = w }
}

// WithSeed sets the seed for rain rolls. Default 0.
func WithSeed(seed uint64) Option {
	return func(r *Router) { r.seed = seed }
}

// WithStrictProgress enables or disables the progress guard. Default on.
// The guard runs after every tile rule, including curves and switches, and
// replaces any distance-increasing move; see engine.WithStrictProgress.
func WithStrictProgress(on bool) Option {
	return func(r *Router) { r.strict = on }
}

// New creates a Router.
func New(g *grid.Grid, b *switches.Bank, opts ...Option) *Router {
	r := &Router{grid: g, bank: b, strict: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route sets t's proposal for tick and marks it WAITING when it pauses.
// t must be on the grid.
func (r *Router) Route(t *train.Train, tick int64) {
	t.State = train.Active
	here := t.Pos

	if here == t.Dest {
		t.Hold()
		return
	}
	if d, ok := grid.Toward(here, t.Dest); ok && r.grid.Contains(t.Dest) {
		t.Propose(t.Dest, d)
		return
	}

	tile := r.grid.Tile(here)
	if tile.Kind == grid.Buffer {
		if !t.BufferHold {
			t.BufferHold = true
			r.pause(t)
			return
		}
		t.BufferHold = false
	} else {
		t.BufferHold = false
	}

	if r.weather == Rain && t.Streak >= RainStreak {
		t.Streak = 0
		if rainRoll(r.seed, tick, t.ID) < RainChance {
			r.pause(t)
			return
		}
	}

	h := r.heading(t, tile)
	next := here.Step(h)
	if !r.grid.Traversable(next) {
		var ok bool
		if h, ok = r.fallback(here, nil); !ok {
			t.Hold()
			return
		}
		next = here.Step(h)
	}

	if r.strict && grid.Manhattan(next, t.Dest) > grid.Manhattan(here, t.Dest) {
		closer := func(p grid.Pos) bool {
			return grid.Manhattan(p, t.Dest) < grid.Manhattan(here, t.Dest)
		}
		var ok bool
		if h, ok = r.fallback(here, closer); !ok {
			t.Hold()
			return
		}
		next = here.Step(h)
	}

	t.Propose(next, h)
}

func (r *Router) pause(t *train.Train) {
	t.State = train.Waiting
	t.Hold()
}

// fallback returns the first direction in UP, RIGHT, DOWN, LEFT order whose
// neighbour is traversable and, when accept is set, accepted by it.
func (r *Router) fallback(here grid.Pos, accept func(grid.Pos) bool) (grid.Direction, bool) {
	for _, d := range grid.Directions {
		p := here.Step(d)
		if !r.grid.Traversable(p) {
			continue
		}
		if accept != nil && !accept(p) {
			continue
		}
		return d, true
	}
	return grid.Up, false
}

// heading applies the tile rule for the train's current cell.
func (r *Router) heading(t *train.Train, tile grid.Tile) grid.Direction {
	switch tile.Kind {
	case grid.Track:
		return straight(t.Heading, tile.Axis)
	case grid.Curve:
		return curve(t.Heading, tile.Curve)
	case grid.Crossing:
		return r.crossing(t)
	case grid.Switch:
		return r.atSwitch(t, tile.SwitchID)
	case grid.Empty:
		return r.offTrack(t)
	}
	// Spawn, Destination, Buffer.
	return t.Heading
}

func straight(h grid.Direction, axis grid.Axis) grid.Direction {
	if axis == grid.Horizontal {
		if h.Horizontal() {
			return h
		}
		return grid.Right
	}
	if !h.Horizontal() && h.Valid() {
		return h
	}
	return grid.Down
}

var (
	slashTurn     = [4]grid.Direction{grid.Up: grid.Right, grid.Right: grid.Up, grid.Down: grid.Left, grid.Left: grid.Down}
	backslashTurn = [4]grid.Direction{grid.Up: grid.Left, grid.Right: grid.Down, grid.Down: grid.Right, grid.Left: grid.Up}
)

func curve(h grid.Direction, k grid.CurveKind) grid.Direction {
	if !h.Valid() {
		return h
	}
	if k == grid.Slash {
		return slashTurn[h]
	}
	return backslashTurn[h]
}

// crossing picks the in-bounds traversable neighbour closest to the
// destination, ties in direction priority order.
func (r *Router) crossing(t *train.Train) grid.Direction {
	best, bestDist := t.Heading, -1
	for _, d := range grid.Directions {
		p := t.Pos.Step(d)
		if !r.grid.Traversable(p) {
			continue
		}
		if dist := grid.Manhattan(p, t.Dest); bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func (r *Router) atSwitch(t *train.Train, id int) grid.Direction {
	sw, ok := r.bank.Get(id)
	if !ok {
		return t.Heading
	}
	switch sw.Label() {
	case switches.LabelStraight:
		return t.Heading
	case switches.LabelTurn:
		return turn(t.Heading, t.Pos, t.Dest)
	}
	return t.Heading
}

// turn leaves the entry axis toward the destination. Without a destination
// it turns DOWN from a horizontal entry and RIGHT from a vertical one.
func turn(h grid.Direction, here, dest grid.Pos) grid.Direction {
	if h.Horizontal() {
		if !dest.Valid() || dest.Row >= here.Row {
			return grid.Down
		}
		return grid.Up
	}
	if !dest.Valid() || dest.Col >= here.Col {
		return grid.Right
	}
	return grid.Left
}

// offTrack looks for track next to a train standing on an empty cell: the
// current heading first, then RIGHT, LEFT, DOWN, UP.
func (r *Router) offTrack(t *train.Train) grid.Direction {
	order := []grid.Direction{t.Heading, grid.Right, grid.Left, grid.Down, grid.Up}
	for _, d := range order {
		if d.Valid() && r.grid.Traversable(t.Pos.Step(d)) {
			return d
		}
	}
	return t.Heading
}
