// Package switches implements the per-switch state machine: entry counters,
// threshold-triggered flip queueing, deferred flip application and signal
// derivation.
//
// A Bank owns every switch of a level. All phase methods walk switches in
// id order (A→Z) so that results are independent of map iteration.
package switches

import (
	"fmt"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
)

// Mode selects how entries are counted.
type Mode int

const (
	// PerDirection keeps one counter and threshold per train heading.
	PerDirection Mode = iota
	// Global keeps one shared counter and threshold.
	Global
)

func (m Mode) String() string {
	if m == Global {
		return "GLOBAL"
	}
	return "PER_DIR"
}

// ParseMode accepts PER_DIR, PER_DIRECTION, GLOBAL and the numeric forms 0/1
// used by older level files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PER_DIR", "PER_DIRECTION", "PERDIR", "0", "":
		return PerDirection, nil
	case "GLOBAL", "1":
		return Global, nil
	}
	return PerDirection, fmt.Errorf("unknown switch mode %q", s)
}

// Signal is the color shown by a switch.
type Signal int

const (
	Green Signal = iota
	Yellow
	Red
)

func (s Signal) String() string {
	switch s {
	case Yellow:
		return "YELLOW"
	case Red:
		return "RED"
	}
	return "GREEN"
}

// Config is the level-supplied description of one switch.
type Config struct {
	ID              int
	Mode            Mode
	Thresholds      [4]int // indexed by grid.Direction
	GlobalThreshold int
	InitialState    int
	Labels          [2]string
}

// Switch is the runtime state of one switch.
type Switch struct {
	ID              int
	Pos             grid.Pos
	Mode            Mode
	Thresholds      [4]int
	GlobalThreshold int
	State           int
	Labels          [2]string

	// Signal is the color derived at the end of the last tick. Displayed
	// lags one tick behind it under fog.
	Signal    Signal
	Displayed Signal

	// Changed is set when the state toggled during the current tick.
	Changed bool

	counters [4]int
	global   int
	pending  bool
}

func newSwitch(cfg Config, pos grid.Pos) *Switch {
	return &Switch{
		ID:              cfg.ID,
		Pos:             pos,
		Mode:            cfg.Mode,
		Thresholds:      cfg.Thresholds,
		GlobalThreshold: cfg.GlobalThreshold,
		State:           cfg.InitialState & 1,
		Labels:          [2]string{NormalizeLabel(cfg.Labels[0]), NormalizeLabel(cfg.Labels[1])},
	}
}

// Letter returns the grid letter of the switch.
func (s *Switch) Letter() string {
	return string(grid.SwitchLetter(s.ID))
}

// Placed reports whether the switch exists on the grid.
func (s *Switch) Placed() bool {
	return s.Pos.Valid()
}

// Label returns the semantic label of the current state.
func (s *Switch) Label() string {
	return s.Labels[s.State&1]
}

// Counter returns the entry counter for a heading (PerDirection mode).
func (s *Switch) Counter(d grid.Direction) int {
	return s.counters[d]
}

// GlobalCounter returns the shared entry counter (Global mode).
func (s *Switch) GlobalCounter() int {
	return s.global
}

func (s *Switch) recordEntry(heading grid.Direction) {
	if s.Mode == Global {
		s.global++
		return
	}
	if heading.Valid() {
		s.counters[heading]++
	}
}

// queueFlip evaluates thresholds. A threshold of zero or less never fires.
func (s *Switch) queueFlip() bool {
	triggered := false
	if s.Mode == Global {
		if s.GlobalThreshold > 0 && s.global >= s.GlobalThreshold {
			s.global = 0
			triggered = true
		}
	} else {
		for _, d := range grid.Directions {
			if s.Thresholds[d] > 0 && s.counters[d] >= s.Thresholds[d] {
				s.counters[d] = 0
				triggered = true
			}
		}
	}
	if triggered {
		s.pending = true
	}
	return triggered
}

func (s *Switch) toggle() {
	s.State = 1 - s.State
	s.Changed = true
}
