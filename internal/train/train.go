// Package train holds the train entity: identity, lifecycle, the per-tick
// move proposal and the loop-detection counters used by stuck recovery.
//
// A Train carries no behaviour of its own beyond bookkeeping. Routing lives
// in package router, conflict resolution in package collision, and the
// engine decides when each of them runs.
package train

import (
	"fmt"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
)

// State is the lifecycle of a train.
type State int

const (
	// Scheduled trains exist but have not been placed on the grid.
	Scheduled State = iota
	// Active trains are on the grid and free to move.
	Active
	// Waiting trains are on the grid but paused this tick (buffer or rain).
	Waiting
	// Arrived trains reached their destination and left the grid.
	Arrived
	// Crashed trains were removed by a fatal conflict.
	Crashed
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Waiting:
		return "WAITING"
	case Arrived:
		return "ARRIVED"
	case Crashed:
		return "CRASHED"
	}
	return "SCHEDULED"
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for st := Scheduled; st <= Crashed; st++ {
		if strings.EqualFold(strings.TrimSpace(s), st.String()) {
			return st, nil
		}
	}
	return Scheduled, fmt.Errorf("unknown train state %q", s)
}

// Spec is the level-supplied schedule entry for one train.
type Spec struct {
	ID        int
	SpawnTick int64
	Start     grid.Pos
	Heading   grid.Direction
	Dest      grid.Pos // grid.NoPos when the level leaves it unassigned
	Color     int
}

// Train is the runtime state of one train.
type Train struct {
	ID        int
	SpawnTick int64
	Start     grid.Pos
	Color     int

	Pos     grid.Pos
	Heading grid.Direction
	Dest    grid.Pos
	State   State

	// SpawnedAt is the tick the train entered the grid, -1 before that.
	SpawnedAt int64

	// Forced is set when stuck recovery, not routing, delivered the train.
	Forced bool

	// Proposal for the current tick. Only meaningful between the route and
	// movement phases.
	Next        grid.Pos
	NextHeading grid.Direction
	// Holding marks a proposal that was "stay" before conflict resolution
	// (routing pause, halt). Collision never displaces a holding train.
	Holding bool

	// BufferHold alternates pause and release ticks on a safety buffer.
	BufferHold bool
	// Streak counts consecutive real moves since the last rain roll.
	Streak int

	progress progress
}

type progress struct {
	last, prev  grid.Pos
	lastDist    int
	repeat      int
	oscillation int
	noProgress  int
}

// New creates a scheduled train from its spec.
func New(s Spec) *Train {
	return &Train{
		ID:        s.ID,
		SpawnTick: s.SpawnTick,
		Start:     s.Start,
		Color:     s.Color,
		Pos:       s.Start,
		Heading:   s.Heading,
		Dest:      s.Dest,
		State:     Scheduled,
		SpawnedAt: -1,
		Next:      s.Start,
	}
}

// OnGrid reports whether the train occupies a cell (active or waiting).
func (t *Train) OnGrid() bool {
	return t.State == Active || t.State == Waiting
}

// Done reports whether the train has left the simulation for good.
func (t *Train) Done() bool {
	return t.State == Arrived || t.State == Crashed
}

// Distance is the Manhattan distance from the current cell to the
// destination.
func (t *Train) Distance() int {
	return grid.Manhattan(t.Pos, t.Dest)
}

// Spawn places the train on the grid at tick.
func (t *Train) Spawn(at grid.Pos, tick int64) {
	t.Pos = at
	t.Next = at
	t.NextHeading = t.Heading
	t.State = Active
	t.SpawnedAt = tick
	t.progress = progress{last: at, prev: grid.NoPos, lastDist: grid.Manhattan(at, t.Dest)}
}

// Propose records the move for this tick.
func (t *Train) Propose(next grid.Pos, heading grid.Direction) {
	t.Next = next
	t.NextHeading = heading
	t.Holding = false
}

// Hold proposes staying in place with the current heading.
func (t *Train) Hold() {
	t.Next = t.Pos
	t.NextHeading = t.Heading
	t.Holding = true
}

// Yield overwrites the proposal with "stay" after losing a conflict. Unlike
// Hold it does not make the train immovable for other conflicts.
func (t *Train) Yield() {
	t.Next = t.Pos
	t.NextHeading = t.Heading
}

// Moving reports whether the current proposal leaves the cell.
func (t *Train) Moving() bool {
	return t.Next != t.Pos
}

// Commit applies the proposal and reports whether the train changed cell.
func (t *Train) Commit() bool {
	moved := t.Next != t.Pos
	t.Pos = t.Next
	t.Heading = t.NextHeading
	if moved {
		t.Streak++
	} else {
		t.Streak = 0
	}
	t.Holding = false
	return moved
}

// Arrive removes the train from the grid as delivered.
func (t *Train) Arrive() {
	t.State = Arrived
	t.Next = t.Pos
	t.progress = progress{}
}

// Crash removes the train from the grid as destroyed.
func (t *Train) Crash() {
	t.State = Crashed
	t.Next = t.Pos
}

// Teleport moves the train onto dest and delivers it.
func (t *Train) Teleport(dest grid.Pos) {
	t.Pos = dest
	t.Dest = dest
	t.Forced = true
	t.Arrive()
}
