package gameserver

import "sync/atomic"

// TickClock publishes the scheduler's current hot-tick counter (spec
// §4.4) to collaborators that need to stamp events with a tick number
// — command handlers attaching an attack tick, respawn enqueue. A
// single *TickScheduler owns the writer side; everything else only
// reads.
type TickClock struct {
	tick atomic.Int64
}

// NewTickClock creates a clock starting at tick 0.
func NewTickClock() *TickClock {
	return &TickClock{}
}

// Now returns the current tick number.
func (c *TickClock) Now() int64 {
	return c.tick.Load()
}

// Advance increments the tick counter by one and returns the new value.
func (c *TickClock) Advance() int64 {
	return c.tick.Add(1)
}
