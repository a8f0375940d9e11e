package engine

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/testutil"
)

// recorder is an Enqueuer that keeps everything it is given.
type recorder struct {
	mu     sync.Mutex
	events []ir.Event
	limit  int
}

func (r *recorder) Enqueue(ev ir.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.events) >= r.limit {
		return false
	}
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) Events() []ir.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ir.Event(nil), r.events...)
}

func TestTickSource_EmitsTickIndices(t *testing.T) {
	m := testutil.NewManualTicker(8)
	src := TickSource{
		Period:    10 * time.Millisecond,
		NewTicker: func(d time.Duration) Ticker { return m.Factory()(d) },
	}
	out := &recorder{limit: 3}

	m.Fire(4)
	err := src.Run(context.Background(), out)
	require.NoError(t, err, "source returns cleanly when the sink closes")

	assert.Equal(t, []ir.Event{ir.Tick{Time: 1}, ir.Tick{Time: 2}, ir.Tick{Time: 3}}, out.Events())
	assert.Equal(t, 10*time.Millisecond, m.Period())
	assert.True(t, m.Stopped())
}

func TestTickSource_Cancel(t *testing.T) {
	m := testutil.NewManualTicker(1)
	src := TickSource{Period: time.Millisecond, NewTicker: func(d time.Duration) Ticker { return m.Factory()(d) }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := src.Run(ctx, &recorder{})
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeTime is a clock that jumps forward by whatever After is asked to wait.
type fakeTime struct {
	now   time.Time
	waits []time.Duration
}

func (f *fakeTime) Now() time.Time { return f.now }

func (f *fakeTime) After(d time.Duration) <-chan time.Time {
	f.waits = append(f.waits, d)
	f.now = f.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}

func TestScheduleSource_DeliversInStartOrderThenEnd(t *testing.T) {
	a := ir.PlayableNote{PlayerLane: true, Pitch: 60, Start: 0.5, End: 0.75}
	b := ir.PlayableNote{PlayerLane: false, Pitch: 40, Start: 0.25, End: 2.0}
	c := ir.PlayableNote{PlayerLane: true, Pitch: 61, Start: 0.5, End: 1.0}

	ft := &fakeTime{now: time.Unix(1000, 0)}
	src := ScheduleSource{Notes: []ir.PlayableNote{a, b, c}, Now: ft.Now, After: ft.After}
	out := &recorder{}

	require.NoError(t, src.Run(context.Background(), out))

	assert.Equal(t, []ir.Event{
		ir.SpawnNote{Note: b},
		ir.SpawnNote{Note: a},
		ir.SpawnNote{Note: c},
		ir.End{},
	}, out.Events())
	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		250 * time.Millisecond,
		1500 * time.Millisecond,
	}, ft.waits, "equal starts do not wait twice")
}

func TestScheduleSource_SkipsNonFiniteOffsets(t *testing.T) {
	early := ir.PlayableNote{PlayerLane: true, Pitch: 60, Start: 0, End: 0.2}
	late := ir.PlayableNote{PlayerLane: true, Pitch: 62, Start: 4, End: 5}
	broken := []ir.PlayableNote{
		{Pitch: 36, Start: math.NaN(), End: math.NaN()},
		{Pitch: 37, Start: 1, End: math.Inf(1)},
		{Pitch: 38, Start: math.Inf(-1), End: 1},
	}

	ft := &fakeTime{now: time.Unix(0, 0)}
	src := ScheduleSource{Notes: append([]ir.PlayableNote{early, late}, broken...), Now: ft.Now, After: ft.After}
	out := &recorder{}

	require.NoError(t, src.Run(context.Background(), out))

	assert.Equal(t, []ir.Event{
		ir.SpawnNote{Note: early},
		ir.SpawnNote{Note: late},
		ir.End{},
	}, out.Events())
	assert.Equal(t, []time.Duration{4 * time.Second, time.Second}, ft.waits, "End waits for the last finite note")
}

func TestScheduleSource_EmptySchedule(t *testing.T) {
	ft := &fakeTime{now: time.Unix(0, 0)}
	out := &recorder{}

	require.NoError(t, ScheduleSource{Now: ft.Now, After: ft.After}.Run(context.Background(), out))
	assert.Equal(t, []ir.Event{ir.End{}}, out.Events())
}

func TestScheduleSource_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := ScheduleSource{
		Notes: []ir.PlayableNote{{Start: 5}},
		After: func(time.Duration) <-chan time.Time { return make(chan time.Time) },
	}
	err := src.Run(ctx, &recorder{})
	assert.ErrorIs(t, err, context.Canceled)
}
