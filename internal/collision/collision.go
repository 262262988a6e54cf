// Package collision resolves conflicting move proposals.
//
// Priority is the Manhattan distance from a train's current cell to its
// destination: the farther train proceeds and the nearer one waits. Equal
// distances go to the lower id, or crash both trains under
// EqualPriorityCrash.
//
// Three conflict shapes are resolved, in this order, until nothing changes:
//
//   - same-target: two trains propose the same cell
//   - head-on swap: two trains propose each other's cell
//   - crossing: a raster scan of every crossing tile for groups of movers
//     still targeting it
//
// A train that was already holding (routing pause, emergency halt) is never
// displaced; a mover targeting its cell loses regardless of priority.
package collision

import (
	"fmt"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// Policy selects what happens on an equal-priority conflict.
type Policy int

const (
	// LoserWaits lets the lower id proceed and the other wait.
	LoserWaits Policy = iota
	// EqualPriorityCrash crashes both trains of an equal-distance
	// same-target or swap conflict.
	EqualPriorityCrash
)

func (p Policy) String() string {
	if p == EqualPriorityCrash {
		return "crash"
	}
	return "wait"
}

// ParsePolicy accepts "wait" / "loser-waits" and "crash" /
// "equal-priority-crash".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wait", "loser-waits", "loser_waits":
		return LoserWaits, nil
	case "crash", "equal-priority-crash", "equal_priority_crash":
		return EqualPriorityCrash, nil
	}
	return LoserWaits, fmt.Errorf("unknown collision policy %q", s)
}

// Shape names the kind of conflict.
type Shape string

const (
	SameTarget Shape = "same-target"
	HeadOn     Shape = "head-on"
	Crossing   Shape = "crossing"
)

// Conflict records one resolved conflict. Loser is -1 when both crashed.
type Conflict struct {
	Shape  Shape    `json:"shape"`
	Cell   grid.Pos `json:"cell"`
	Winner int      `json:"winner"`
	Loser  int      `json:"loser"`
	Crash  []int    `json:"crash,omitempty"`
}

// Outcome is the result of one Resolve call.
type Outcome struct {
	Conflicts []Conflict
	Crashed   []int // ascending
}

// Resolver resolves conflicts on one grid.
type Resolver struct {
	grid   *grid.Grid
	policy Policy
}

// New creates a Resolver.
func New(g *grid.Grid, p Policy) *Resolver {
	return &Resolver{grid: g, policy: p}
}

// Policy returns the configured policy.
func (r *Resolver) Policy() Policy { return r.policy }

type entry struct {
	t       *train.Train
	dist    int
	crashed bool
	// swapped is the id of the head-on partner this train beat, -1 if none.
	// The winner of a swap moves into the loser's cell.
	swapped int
}

func (e *entry) moving() bool { return !e.crashed && e.t.Moving() }

// Resolve rewrites the proposals of trains (on-grid, ascending id) into a
// conflict-free set. Losers get their current cell and heading back.
// Crashed trains are reported in the outcome; marking them is left to the
// caller.
func (r *Resolver) Resolve(trains []*train.Train) Outcome {
	es := make([]*entry, len(trains))
	for i, t := range trains {
		es[i] = &entry{t: t, dist: t.Distance(), swapped: -1}
	}

	var out Outcome
	// Every pass that changes something turns at least one mover into a
	// stayer or a crash, so len+1 passes always reach a fixed point.
	for pass := 0; pass <= len(es); pass++ {
		changed := r.pairwise(es, &out)
		if r.crossings(es, &out) {
			changed = true
		}
		if !changed {
			break
		}
	}

	for _, e := range es {
		if e.crashed {
			out.Crashed = append(out.Crashed, e.t.ID)
		}
	}
	return out
}

func (r *Resolver) pairwise(es []*entry, out *Outcome) bool {
	changed := false
	for i := 0; i < len(es); i++ {
		for j := i + 1; j < len(es); j++ {
			a, b := es[i], es[j]
			if a.crashed || b.crashed {
				continue
			}
			if r.sameTarget(a, b, out) || r.headOn(a, b, out) {
				changed = true
			}
		}
	}
	return changed
}

func (r *Resolver) sameTarget(a, b *entry, out *Outcome) bool {
	if a.t.Next != b.t.Next || (!a.moving() && !b.moving()) {
		return false
	}
	if a.swapped == b.t.ID || b.swapped == a.t.ID {
		return false
	}
	cell := a.t.Next
	switch {
	case !a.moving():
		b.t.Yield()
		out.Conflicts = append(out.Conflicts, Conflict{Shape: SameTarget, Cell: cell, Winner: a.t.ID, Loser: b.t.ID})
		return true
	case !b.moving():
		a.t.Yield()
		out.Conflicts = append(out.Conflicts, Conflict{Shape: SameTarget, Cell: cell, Winner: b.t.ID, Loser: a.t.ID})
		return true
	}
	r.decide(SameTarget, cell, a, b, out)
	return true
}

func (r *Resolver) headOn(a, b *entry, out *Outcome) bool {
	if !a.moving() || !b.moving() {
		return false
	}
	if a.t.Next != b.t.Pos || b.t.Next != a.t.Pos {
		return false
	}
	if w, ok := r.decide(HeadOn, a.t.Pos, a, b, out); ok {
		if w == a {
			a.swapped = b.t.ID
		} else {
			b.swapped = a.t.ID
		}
	}
	return true
}

// crossings scans crossing tiles in raster order for two or more movers
// still targeting the same one.
func (r *Resolver) crossings(es []*entry, out *Outcome) bool {
	changed := false
	for _, cell := range r.grid.Find(grid.Crossing) {
		var group []*entry
		for _, e := range es {
			if e.moving() && e.t.Next == cell {
				group = append(group, e)
			}
		}
		if len(group) < 2 {
			continue
		}
		winner := group[0]
		for _, e := range group[1:] {
			if beats(e, winner) {
				winner = e
			}
		}
		for _, e := range group {
			if e == winner {
				continue
			}
			e.t.Yield()
			out.Conflicts = append(out.Conflicts, Conflict{Shape: Crossing, Cell: cell, Winner: winner.t.ID, Loser: e.t.ID})
		}
		changed = true
	}
	return changed
}

// decide resolves a two-mover conflict by priority. It returns the winner,
// or ok=false when both crashed.
func (r *Resolver) decide(shape Shape, cell grid.Pos, a, b *entry, out *Outcome) (winner *entry, ok bool) {
	if a.dist == b.dist && r.policy == EqualPriorityCrash {
		a.crashed, b.crashed = true, true
		a.t.Yield()
		b.t.Yield()
		out.Conflicts = append(out.Conflicts, Conflict{
			Shape: shape, Cell: cell, Winner: -1, Loser: -1,
			Crash: []int{a.t.ID, b.t.ID},
		})
		return nil, false
	}
	winner, loser := a, b
	if beats(b, a) {
		winner, loser = b, a
	}
	loser.t.Yield()
	out.Conflicts = append(out.Conflicts, Conflict{Shape: shape, Cell: cell, Winner: winner.t.ID, Loser: loser.t.ID})
	return winner, true
}

// beats reports whether a has priority over b.
func beats(a, b *entry) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.t.ID < b.t.ID
}
