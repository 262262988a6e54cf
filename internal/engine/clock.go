package engine

import "sync/atomic"

// Clock is the simulation tick counter.
//
// Current is the number of the tick about to run (and therefore the number
// of ticks completed so far). The engine reads it at the start of a tick and
// advances it with Next once every phase has run, so observers never see a
// half-advanced clock.
//
// Thread-safety: reads are atomic so an observer may poll Current without
// the engine lock. Only the engine calls Next.
type Clock struct {
	tick atomic.Int64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new tick number.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the current tick number without advancing.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}
