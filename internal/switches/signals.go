package switches

import "github.com/MZiaRAwan/PF-Project/internal/grid"

// Mover is a train's committed position and heading as seen by signal
// derivation.
type Mover struct {
	Next    grid.Pos
	Heading grid.Direction
}

// yellowRange is the Manhattan radius within which an approaching train
// turns a signal yellow.
const yellowRange = 2

// DeriveSignals recomputes every placed switch's color from the committed
// train positions.
//
//   - RED: the switch is halted, a flip is pending, or a mover sits on the
//     switch tile or one of its four neighbours.
//   - YELLOW: a mover within Manhattan distance 2 is heading toward it.
//   - GREEN: otherwise.
//
// With fog set, Displayed takes the color computed on the previous call;
// Signal always holds the current one.
//
// The engine derives signals after ApplyDeferredFlips has cleared every
// pending flag, so within a tick the pending-flip rule never fires there.
// It only applies to callers that derive between QueueFlips and
// ApplyDeferredFlips.
func (b *Bank) DeriveSignals(movers []Mover, halted map[int]bool, fog bool) {
	for _, s := range b.Placed() {
		prev := s.Signal
		s.Signal = deriveSignal(s, movers, halted[s.ID])
		if fog {
			s.Displayed = prev
		} else {
			s.Displayed = s.Signal
		}
	}
}

func deriveSignal(s *Switch, movers []Mover, halted bool) Signal {
	if halted || s.pending {
		return Red
	}
	yellow := false
	for _, m := range movers {
		d := grid.Manhattan(m.Next, s.Pos)
		if d <= 1 {
			return Red
		}
		if d <= yellowRange && m.Heading.Valid() && grid.Manhattan(m.Next.Step(m.Heading), s.Pos) < d {
			yellow = true
		}
	}
	if yellow {
		return Yellow
	}
	return Green
}
