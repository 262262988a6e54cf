package engine

import (
	"fmt"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
)

// ToggleBufferTile places or removes a safety buffer at (row, col). It must
// be called between ticks.
func (e *Engine) ToggleBufferTile(row, col int) error {
	p := grid.Pos{Row: row, Col: col}
	placed, err := e.grid.ToggleBuffer(p)
	if err != nil {
		return newEditError("toggle_buffer", p.String(), err)
	}
	e.cfg.log.Info("buffer toggled",
		"tick", e.clock.Current(),
		"pos", p.String(),
		"placed", placed,
		"symbol", string(e.grid.Symbol(p)),
	)
	return nil
}

// ToggleSwitch flips a switch immediately. Manual flips bypass the counters
// and are not counted in the flip metric.
func (e *Engine) ToggleSwitch(id int) error {
	if err := e.bank.Toggle(id); err != nil {
		return newEditError("toggle_switch", switchName(id), err)
	}
	sw, _ := e.bank.Get(id)
	e.cfg.log.Info("switch toggled",
		"tick", e.clock.Current(),
		"switch", sw.Letter(),
		"state", sw.State,
		"label", sw.Label(),
	)
	return nil
}

// TriggerEmergencyHalt freezes every train within one cell of the switch for
// the next ticks ticks (DefaultHaltTicks when ticks <= 0). Triggering an
// already halted switch restarts its timer.
func (e *Engine) TriggerEmergencyHalt(id, ticks int) error {
	sw, ok := e.bank.Get(id)
	if !ok || !sw.Placed() {
		return newEditError("halt", switchName(id), switches.ErrUnknownSwitch)
	}
	if ticks <= 0 {
		ticks = DefaultHaltTicks
	}
	e.halts[id] = ticks
	e.cfg.log.Info("emergency halt",
		"tick", e.clock.Current(),
		"switch", sw.Letter(),
		"ticks", ticks,
	)
	return nil
}

// HaltRemaining returns the remaining halt ticks of a switch, 0 when it is
// not halted.
func (e *Engine) HaltRemaining(id int) int {
	return e.halts[id]
}

func switchName(id int) string {
	if id >= 0 && id < grid.MaxSwitches {
		return string(grid.SwitchLetter(id))
	}
	return fmt.Sprintf("#%d", id)
}
