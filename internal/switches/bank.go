package switches

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
)

// ErrUnknownSwitch is returned when an id does not name a configured switch.
var ErrUnknownSwitch = errors.New("unknown switch")

// Bank owns all switches of a level, keyed by id.
type Bank struct {
	byID map[int]*Switch
	ids  []int // ascending
}

// NewBank creates the runtime switches. Each config is placed at the grid
// cell carrying its letter; configs whose letter is absent from the grid get
// grid.NoPos and take part in no phase. Letters present on the grid without
// a config get a default PerDirection switch with disabled thresholds and
// labels STRAIGHT/TURN.
func NewBank(configs []Config, positions map[int]grid.Pos) (*Bank, error) {
	b := &Bank{byID: make(map[int]*Switch)}
	for _, cfg := range configs {
		if cfg.ID < 0 || cfg.ID >= grid.MaxSwitches {
			return nil, fmt.Errorf("switch id %d: %w", cfg.ID, ErrUnknownSwitch)
		}
		if _, dup := b.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("switch %s configured twice", string(grid.SwitchLetter(cfg.ID)))
		}
		pos, ok := positions[cfg.ID]
		if !ok {
			pos = grid.NoPos
		}
		b.byID[cfg.ID] = newSwitch(cfg, pos)
	}
	for id, pos := range positions {
		if _, ok := b.byID[id]; ok {
			continue
		}
		b.byID[id] = newSwitch(Config{ID: id, Labels: [2]string{LabelStraight, LabelTurn}}, pos)
	}
	for id := range b.byID {
		b.ids = append(b.ids, id)
	}
	sort.Ints(b.ids)
	return b, nil
}

// Get returns the switch with the given id.
func (b *Bank) Get(id int) (*Switch, bool) {
	s, ok := b.byID[id]
	return s, ok
}

// Placed returns the switches present on the grid, in id order.
func (b *Bank) Placed() []*Switch {
	out := make([]*Switch, 0, len(b.ids))
	for _, id := range b.ids {
		if s := b.byID[id]; s.Placed() {
			out = append(out, s)
		}
	}
	return out
}

// BeginTick clears the per-tick changed flags.
func (b *Bank) BeginTick() {
	for _, s := range b.byID {
		s.Changed = false
	}
}

// RecordEntry counts one train standing on switch id with the given heading.
func (b *Bank) RecordEntry(id int, heading grid.Direction) {
	if s, ok := b.byID[id]; ok && s.Placed() {
		s.recordEntry(heading)
	}
}

// QueueFlips evaluates every placed switch and returns the ids that queued a
// flip this call. At most one flip is queued per switch per call.
func (b *Bank) QueueFlips() []int {
	var queued []int
	for _, s := range b.Placed() {
		if s.queueFlip() {
			queued = append(queued, s.ID)
		}
	}
	return queued
}

// ApplyDeferredFlips toggles every switch with a pending flip exactly once,
// clears the pending flag and returns the flipped ids.
func (b *Bank) ApplyDeferredFlips() []int {
	var flipped []int
	for _, s := range b.Placed() {
		if !s.pending {
			continue
		}
		s.toggle()
		s.pending = false
		flipped = append(flipped, s.ID)
	}
	return flipped
}

// Toggle flips a switch immediately. It is the manual-edit path and does not
// touch counters or the pending flag.
func (b *Bank) Toggle(id int) error {
	s, ok := b.byID[id]
	if !ok || !s.Placed() {
		return fmt.Errorf("toggle %s: %w", string(grid.SwitchLetter(id)), ErrUnknownSwitch)
	}
	s.toggle()
	return nil
}
