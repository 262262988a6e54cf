package train

// Limits bound how long a train may loop before stuck recovery delivers it.
// A counter must exceed its limit; Close is the distance at or under which a
// train is never considered stuck.
type Limits struct {
	Repeat      int
	Oscillation int
	NoProgress  int
	Lifetime    int64
	Close       int
}

// DefaultLimits are the recovery thresholds used unless overridden.
var DefaultLimits = Limits{
	Repeat:      50,
	Oscillation: 5,
	NoProgress:  30,
	Lifetime:    500,
	Close:       5,
}

// Counters is a read-only view of the loop-detection state.
type Counters struct {
	Repeat      int
	Oscillation int
	NoProgress  int
}

// Counters returns the current loop-detection counters.
func (t *Train) Counters() Counters {
	return Counters{
		Repeat:      t.progress.repeat,
		Oscillation: t.progress.oscillation,
		NoProgress:  t.progress.noProgress,
	}
}

// TrackProgress updates the loop-detection counters from the committed
// position. It runs once per tick for every train still on the grid.
//
// repeat counts ticks spent on the same cell. oscillation counts returns to
// the cell before last (A→B→A). noProgress counts ticks whose distance did
// not improve on the previous tick. Reaching a cell that is neither of the
// last two while getting closer clears oscillation.
func (t *Train) TrackProgress() {
	p := &t.progress
	dist := t.Distance()

	if t.Pos == p.last {
		p.repeat++
	} else {
		p.repeat = 0
	}

	switch {
	case t.Pos == p.prev && t.Pos != p.last:
		p.oscillation++
	case t.Pos != p.last && t.Pos != p.prev && dist < p.lastDist:
		p.oscillation = 0
	}

	if dist >= p.lastDist {
		p.noProgress++
	} else {
		p.noProgress = 0
	}

	p.prev, p.last, p.lastDist = p.last, t.Pos, dist
}

// Stuck reports whether the train has exhausted a limit while still far from
// its destination.
func (t *Train) Stuck(tick int64, lim Limits) bool {
	if t.Distance() <= lim.Close {
		return false
	}
	p := t.progress
	return p.repeat > lim.Repeat ||
		p.oscillation > lim.Oscillation ||
		p.noProgress > lim.NoProgress ||
		(t.SpawnedAt >= 0 && tick-t.SpawnedAt > lim.Lifetime)
}

// NoDest reports whether the train has no usable destination.
func (t *Train) NoDest() bool {
	return !t.Dest.Valid()
}
