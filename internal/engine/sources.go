package engine

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Ticker is the part of time.Ticker a TickSource needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// TickSource emits Tick(1), Tick(2), ... once per Period.
type TickSource struct {
	Period time.Duration
	// NewTicker defaults to NewRealTicker. Tests inject a manual ticker.
	NewTicker func(time.Duration) Ticker
}

// Run delivers ticks until ctx is cancelled or out stops accepting.
func (s TickSource) Run(ctx context.Context, out Enqueuer) error {
	newTicker := s.NewTicker
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	t := newTicker(s.Period)
	defer t.Stop()

	var n int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			n++
			if !out.Enqueue(ir.Tick{Time: n}) {
				return nil
			}
		}
	}
}

// ScheduleSource delivers the note schedule: each note as a SpawnNote at its
// start offset, then End at the latest end offset.
type ScheduleSource struct {
	Notes []ir.PlayableNote
	// Now and After default to the time package.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Run delivers the schedule relative to the moment it is called.
func (s ScheduleSource) Run(ctx context.Context, out Enqueuer) error {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	after := s.After
	if after == nil {
		after = time.After
	}

	notes := make([]ir.PlayableNote, 0, len(s.Notes))
	for _, n := range s.Notes {
		if !validOffset(n.Start) || !validOffset(n.End) {
			slog.Warn("schedule note skipped", "pitch", n.Pitch, "start", n.Start, "end", n.End)
			continue
		}
		notes = append(notes, n)
	}
	slices.SortStableFunc(notes, func(a, b ir.PlayableNote) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	begin := now()
	wait := func(offset float64) error {
		d := begin.Add(seconds(offset)).Sub(now())
		if d <= 0 {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(d):
			return nil
		}
	}

	var last float64
	for _, n := range notes {
		if err := wait(n.Start); err != nil {
			return err
		}
		if !out.Enqueue(ir.SpawnNote{Note: n}) {
			return nil
		}
		last = max(last, n.End)
	}

	if err := wait(last); err != nil {
		return err
	}
	slog.Debug("schedule complete", "notes", len(notes), "end", last)
	out.Enqueue(ir.End{})
	return nil
}

// validOffset rejects offsets that cannot be placed on the timeline.
func validOffset(s float64) bool {
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s >= 0
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
