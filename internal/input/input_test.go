package input

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestMapper_DefaultBindings(t *testing.T) {
	m := NewMapper(config.Default().Keys)
	base := time.Unix(100, 0)

	tests := []struct {
		key  rune
		want ir.Lane
	}{
		{'h', ir.LaneGreen},
		{'j', ir.LaneRed},
		{'k', ir.LaneBlue},
		{'l', ir.LaneYellow},
		{'L', ir.LaneYellow},
	}
	for i, tt := range tests {
		action, lane := m.Handle(runeKey(tt.key), base.Add(time.Duration(i)*time.Second))
		assert.Equal(t, ActionLane, action, string(tt.key))
		assert.Equal(t, tt.want, lane, string(tt.key))
	}
}

func TestMapper_UnboundAndSpecialKeys(t *testing.T) {
	m := NewMapper(config.Default().Keys)
	now := time.Unix(100, 0)

	action, _ := m.Handle(runeKey('x'), now)
	assert.Equal(t, ActionNone, action)

	action, _ = m.Handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), now)
	assert.Equal(t, ActionNone, action)

	action, _ = m.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), now)
	assert.Equal(t, ActionQuit, action)

	action, _ = m.Handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), now)
	assert.Equal(t, ActionQuit, action)
}

func TestMapper_FiltersAutoRepeat(t *testing.T) {
	m := NewMapper(config.Keys{Lanes: "hjkl", RepeatWindowMS: 40})
	t0 := time.Unix(100, 0)

	action, _ := m.Handle(runeKey('h'), t0)
	assert.Equal(t, ActionLane, action)

	action, _ = m.Handle(runeKey('h'), t0.Add(30*time.Millisecond))
	assert.Equal(t, ActionNone, action, "repeat inside the window")

	// The window restarts from each repeat.
	action, _ = m.Handle(runeKey('h'), t0.Add(60*time.Millisecond))
	assert.Equal(t, ActionNone, action)

	action, _ = m.Handle(runeKey('h'), t0.Add(100*time.Millisecond))
	assert.Equal(t, ActionLane, action)

	// Other lanes are tracked independently.
	action, lane := m.Handle(runeKey('j'), t0.Add(101*time.Millisecond))
	assert.Equal(t, ActionLane, action)
	assert.Equal(t, ir.LaneRed, lane)
}

func TestMapper_RepeatDelayCoversFirstRepeat(t *testing.T) {
	m := NewMapper(config.Keys{Lanes: "hjkl", RepeatWindowMS: 40, RepeatDelayMS: 600})
	t0 := time.Unix(100, 0)

	action, _ := m.Handle(runeKey('h'), t0)
	assert.Equal(t, ActionLane, action)

	action, _ = m.Handle(runeKey('h'), t0.Add(500*time.Millisecond))
	assert.Equal(t, ActionNone, action, "first repeat after the initial delay")

	action, _ = m.Handle(runeKey('h'), t0.Add(530*time.Millisecond))
	assert.Equal(t, ActionNone, action, "steady repeat")

	// Released and pressed again: only the short window applies mid-repeat.
	action, _ = m.Handle(runeKey('h'), t0.Add(700*time.Millisecond))
	assert.Equal(t, ActionLane, action)

	// A fresh edge restores the initial delay.
	action, _ = m.Handle(runeKey('h'), t0.Add(1200*time.Millisecond))
	assert.Equal(t, ActionNone, action)
}

func TestMapper_WithoutDelayFirstRepeatPasses(t *testing.T) {
	m := NewMapper(config.Keys{Lanes: "hjkl", RepeatWindowMS: 40})
	t0 := time.Unix(100, 0)

	action, _ := m.Handle(runeKey('h'), t0)
	assert.Equal(t, ActionLane, action)

	action, _ = m.Handle(runeKey('h'), t0.Add(250*time.Millisecond))
	assert.Equal(t, ActionLane, action, "a fast second tap is kept")
}

func TestMapper_ZeroWindowKeepsEveryPress(t *testing.T) {
	m := NewMapper(config.Keys{Lanes: "asdf", RepeatWindowMS: 0})
	t0 := time.Unix(100, 0)

	for i := 0; i < 3; i++ {
		action, lane := m.Handle(runeKey('d'), t0)
		assert.Equal(t, ActionLane, action)
		assert.Equal(t, ir.LaneBlue, lane)
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "lane", ActionLane.String())
	assert.Equal(t, "quit", ActionQuit.String())
	assert.Equal(t, "none", ActionNone.String())
}

type recorder struct {
	mu     sync.Mutex
	events []ir.Event
}

func (r *recorder) Enqueue(ev ir.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func TestPump_EnqueuesLanesUntilQuit(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	screen.InjectKey(tcell.KeyRune, 'h', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'k', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	rec := &recorder{}
	quit := false
	done := make(chan struct{})
	go func() {
		defer close(done)
		Pump(context.Background(), screen, NewMapper(config.Default().Keys), rec, func() { quit = true })
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not return after Esc")
	}

	assert.True(t, quit)
	assert.Equal(t, []ir.Event{
		ir.KeyPress{Lane: ir.LaneGreen},
		ir.KeyPress{Lane: ir.LaneBlue},
	}, rec.events)
}

func TestPump_ReturnsWhenScreenFinalised(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	done := make(chan struct{})
	go func() {
		defer close(done)
		Pump(context.Background(), screen, NewMapper(config.Default().Keys), &recorder{}, nil)
	}()

	screen.Fini()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not return after Fini")
	}
}
