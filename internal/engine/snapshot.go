package engine

import (
	"github.com/MZiaRAwan/PF-Project/internal/grid"
)

// TrainView is the read-only view of one train.
type TrainView struct {
	ID      int      `json:"id"`
	Pos     grid.Pos `json:"pos"`
	Heading string   `json:"heading"`
	State   string   `json:"state"`
	Dest    grid.Pos `json:"dest"`
	Color   int      `json:"color"`
	Forced  bool     `json:"forced,omitempty"`
}

// SwitchView is the read-only view of one placed switch.
type SwitchView struct {
	ID        int      `json:"id"`
	Letter    string   `json:"letter"`
	Pos       grid.Pos `json:"pos"`
	Mode      string   `json:"mode"`
	State     int      `json:"state"`
	Label     string   `json:"label"`
	Changed   bool     `json:"changed"`
	Signal    string   `json:"signal"`
	Displayed string   `json:"displayed"`
	Counters  [4]int   `json:"counters"`
	Global    int      `json:"global"`
	Halt      int      `json:"halt,omitempty"`
}

// Snapshot is the full observable state between ticks.
type Snapshot struct {
	Tick     int64        `json:"tick"`
	Complete bool         `json:"complete"`
	Trains   []TrainView  `json:"trains"`
	Switches []SwitchView `json:"switches"`
	Metrics  Metrics      `json:"metrics"`
	Grid     []string     `json:"grid"`
}

// Snapshot copies the current state. Trains are in id order, switches A→Z.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Tick:     e.clock.Current(),
		Complete: e.IsComplete(),
		Trains:   make([]TrainView, 0, len(e.trains)),
		Metrics:  e.Metrics(),
		Grid:     e.grid.Lines(),
	}
	for _, t := range e.trains {
		s.Trains = append(s.Trains, TrainView{
			ID:      t.ID,
			Pos:     t.Pos,
			Heading: t.Heading.String(),
			State:   t.State.String(),
			Dest:    t.Dest,
			Color:   t.Color,
			Forced:  t.Forced,
		})
	}
	placed := e.bank.Placed()
	s.Switches = make([]SwitchView, 0, len(placed))
	for _, sw := range placed {
		v := SwitchView{
			ID:        sw.ID,
			Letter:    sw.Letter(),
			Pos:       sw.Pos,
			Mode:      sw.Mode.String(),
			State:     sw.State,
			Label:     sw.Label(),
			Changed:   sw.Changed,
			Signal:    sw.Signal.String(),
			Displayed: sw.Displayed.String(),
			Global:    sw.GlobalCounter(),
			Halt:      e.halts[sw.ID],
		}
		for _, d := range grid.Directions {
			v.Counters[d] = sw.Counter(d)
		}
		s.Switches = append(s.Switches, v)
	}
	return s
}
