package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a ticker that only fires when told to.
//
// It satisfies engine.Ticker, so clock-driven sources can be stepped one
// tick at a time without sleeping.
type ManualTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	stopped bool
	period  time.Duration
}

// NewManualTicker creates a ticker with room for buffer pending ticks.
func NewManualTicker(buffer int) *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, buffer)}
}

// Factory returns a constructor usable as TickSource.NewTicker.
// The requested period is recorded for assertions.
func (m *ManualTicker) Factory() func(time.Duration) *ManualTicker {
	return func(d time.Duration) *ManualTicker {
		m.mu.Lock()
		m.period = d
		m.mu.Unlock()
		return m
	}
}

// C returns the tick channel.
func (m *ManualTicker) C() <-chan time.Time {
	return m.ch
}

// Fire delivers n ticks.
func (m *ManualTicker) Fire(n int) {
	for i := 0; i < n; i++ {
		m.ch <- time.Time{}
	}
}

// Stop marks the ticker stopped.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop was called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Period returns the period passed to the factory.
func (m *ManualTicker) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}
