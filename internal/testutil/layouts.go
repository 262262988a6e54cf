package testutil

import (
	"testing"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// LineLevelYAML is the YAML form of LineLayout.
const LineLevelYAML = `name: line
seed: 1
map:
  - "S--A--D"
switches:
  - letter: A
    mode: PER_DIR
trains:
  - id: 1
    start: {row: 0, col: 0}
    dir: RIGHT
    dest: {row: 0, col: 6}
`

// LineLayout is one straight line through switch A. Train 1 spawns on
// tick 0 and arrives on tick 5.
func LineLayout() engine.Layout {
	return engine.Layout{
		Lines:    []string{"S--A--D"},
		Switches: []switches.Config{{ID: 0, Labels: [2]string{"STRAIGHT", "TURN"}}},
		Trains: []train.Spec{
			{ID: 1, Start: grid.Pos{Row: 0, Col: 0}, Heading: grid.Right, Dest: grid.Pos{Row: 0, Col: 6}},
		},
	}
}

// NewEngine builds an engine or fails the test.
func NewEngine(t testing.TB, layout engine.Layout, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(layout, opts...)
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	return e
}

// Snapshots ticks e until it completes or maxTicks ticks have run and
// returns the snapshot taken after each tick.
func Snapshots(e *engine.Engine, maxTicks int) []engine.Snapshot {
	var out []engine.Snapshot
	for i := 0; i < maxTicks && !e.IsComplete(); i++ {
		e.Tick()
		out = append(out, e.Snapshot())
	}
	return out
}
