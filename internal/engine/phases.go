package engine

import (
	"sort"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// spawn places every due scheduled train, lowest start cell first. A train
// that cannot be placed stays scheduled and retries next tick.
func (e *Engine) spawn(tick int64) []int {
	var due []*train.Train
	for _, t := range e.trains {
		if t.State == train.Scheduled && t.SpawnTick <= tick {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Start != due[j].Start {
			return due[i].Start.Less(due[j].Start)
		}
		return due[i].ID < due[j].ID
	})

	occupied := make(map[grid.Pos]bool)
	for _, t := range e.trains {
		if t.OnGrid() {
			occupied[t.Pos] = true
		}
	}

	var spawned []int
	for _, t := range due {
		at, strategy, ok := e.placement(t.Start, occupied)
		if !ok {
			e.cfg.log.Debug("spawn deferred", "tick", tick, "train", t.ID, "start", t.Start.String())
			continue
		}
		t.Spawn(at, tick)
		occupied[at] = true
		e.metrics.Spawned++
		spawned = append(spawned, t.ID)
		e.cfg.log.Debug("train spawned",
			"tick", tick,
			"train", t.ID,
			"pos", at.String(),
			"strategy", strategy,
			"dest", t.Dest.String(),
		)
	}
	sort.Ints(spawned)
	return spawned
}

// placement runs the ranked spawn strategies: the exact start tile, the
// nearest free spawn tile, the nearest free traversable tile, and finally
// the requested cell itself when it is in bounds and free. An exact tile
// that is traversable but occupied defers the spawn instead of falling
// through.
func (e *Engine) placement(req grid.Pos, occupied map[grid.Pos]bool) (grid.Pos, string, bool) {
	if e.grid.Traversable(req) {
		if occupied[req] {
			return grid.NoPos, "", false
		}
		return req, "exact", true
	}
	if p, ok := e.grid.Nearest(req, func(p grid.Pos, t grid.Tile) bool {
		return t.Kind == grid.Spawn && !occupied[p]
	}); ok {
		return p, "nearest_spawn", true
	}
	if p, ok := e.grid.Nearest(req, func(p grid.Pos, t grid.Tile) bool {
		return t.Traversable() && !occupied[p]
	}); ok {
		return p, "nearest_track", true
	}
	if e.grid.Contains(req) && !occupied[req] {
		return req, "forced", true
	}
	return grid.NoPos, "", false
}

// applyHalts makes every train within one cell (both axes) of a halted
// switch hold. It returns the held train ids.
func (e *Engine) applyHalts(onGrid []*train.Train) []int {
	if len(e.halts) == 0 {
		return nil
	}
	var held []int
	for _, t := range onGrid {
		for _, sw := range e.bank.Placed() {
			if e.halts[sw.ID] > 0 && grid.Chebyshev(t.Pos, sw.Pos) <= 1 {
				t.Hold()
				held = append(held, t.ID)
				break
			}
		}
	}
	return held
}

// countEntries records one entry per train standing on a switch tile, keyed
// by the heading it stands with.
func (e *Engine) countEntries(onGrid []*train.Train) {
	for _, t := range onGrid {
		if tile := e.grid.Tile(t.Pos); tile.Kind == grid.Switch {
			e.bank.RecordEntry(tile.SwitchID, t.Heading)
		}
	}
}

// move resolves conflicts and commits every surviving proposal.
func (e *Engine) move(onGrid []*train.Train, rep *TickReport) {
	out := e.resolver.Resolve(onGrid)
	rep.Conflicts = out.Conflicts
	for _, c := range out.Conflicts {
		e.cfg.log.Debug("conflict resolved",
			"tick", rep.Tick,
			"shape", string(c.Shape),
			"cell", c.Cell.String(),
			"winner", c.Winner,
			"loser", c.Loser,
		)
	}

	for _, id := range out.Crashed {
		t := e.byID[id]
		t.Crash()
		e.metrics.Crashes++
		e.cfg.log.Warn("train crashed",
			"tick", rep.Tick,
			"train", id,
			"pos", t.Pos.String(),
			"policy", e.cfg.policy.String(),
		)
	}
	rep.Crashed = out.Crashed

	for _, t := range onGrid {
		if !t.OnGrid() {
			continue
		}
		if t.Moving() {
			if tile := e.grid.Tile(t.Next); tile.Kind == grid.Switch {
				if sw, ok := e.bank.Get(tile.SwitchID); ok && sw.Signal == switches.Red {
					e.metrics.SignalViolations++
				}
			}
		}
		moved := t.Commit()
		e.metrics.TrainTicks++
		if !moved {
			e.metrics.WaitTicks++
		}
	}
}

// arrivals delivers trains standing on their destination, then runs stuck
// recovery on the rest.
func (e *Engine) arrivals(tick int64, rep *TickReport) {
	for _, t := range e.trains {
		if !t.OnGrid() {
			continue
		}
		if t.Pos == t.Dest {
			t.Arrive()
			e.metrics.Arrivals++
			rep.Arrived = append(rep.Arrived, t.ID)
			e.cfg.log.Debug("train arrived", "tick", tick, "train", t.ID, "pos", t.Pos.String())
			continue
		}
		if !e.cfg.recovery {
			continue
		}
		t.TrackProgress()
		if !t.Stuck(tick, e.cfg.limits) {
			continue
		}
		target := t.Dest
		if !e.grid.Contains(target) {
			p, ok := e.grid.Nearest(t.Pos, func(_ grid.Pos, tile grid.Tile) bool {
				return tile.Kind == grid.Destination
			})
			if !ok {
				continue
			}
			target = p
		}
		c := t.Counters()
		from := t.Pos
		t.Teleport(target)
		e.metrics.Arrivals++
		e.metrics.ForcedArrivals++
		rep.Recovered = append(rep.Recovered, t.ID)
		e.cfg.log.Warn("stuck train recovered",
			"tick", tick,
			"train", t.ID,
			"from", from.String(),
			"to", target.String(),
			"repeat", c.Repeat,
			"oscillation", c.Oscillation,
			"no_progress", c.NoProgress,
			"age", tick-t.SpawnedAt,
		)
	}
}

func (e *Engine) countDownHalts() {
	for id, left := range e.halts {
		if left <= 1 {
			delete(e.halts, id)
			continue
		}
		e.halts[id] = left - 1
	}
}

func (e *Engine) deriveSignals() {
	var movers []switches.Mover
	for _, t := range e.trains {
		if t.OnGrid() {
			movers = append(movers, switches.Mover{Next: t.Pos, Heading: t.Heading})
		}
	}
	halted := make(map[int]bool, len(e.halts))
	for id := range e.halts {
		halted[id] = true
	}
	e.bank.DeriveSignals(movers, halted, e.cfg.weather == router.Fog)
}
