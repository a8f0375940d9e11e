package engine

import "sync/atomic"

// Clock hands out the monotonic step sequence numbers.
//
// Seq orders recorded events; replays read them back ORDER BY seq. It is a
// logical counter, unrelated to the Tick payload.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
