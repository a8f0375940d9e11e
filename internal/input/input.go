// Package input turns terminal key events into lane presses.
package input

import (
	"context"
	"log/slog"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Action is what a key event means to the game.
type Action int

const (
	// ActionNone is an unbound key or a filtered auto-repeat.
	ActionNone Action = iota
	// ActionLane is a key-down edge on a lane.
	ActionLane
	// ActionQuit ends the session.
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionLane:
		return "lane"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Mapper maps key events to lanes.
//
// Terminals report a held key as repeated presses and never report the
// release. A second press of the same lane within RepeatWindow of the
// previous one is treated as repeat and dropped, so only key-down edges
// reach the reducer. The first repeat of a held key arrives after the
// terminal's initial delay; with RepeatDelay set, any press that soon
// after a fresh edge is dropped too.
type Mapper struct {
	lanes     map[rune]ir.Lane
	window    time.Duration
	delay     time.Duration
	last      [ir.LaneCount]time.Time
	repeating [ir.LaneCount]bool
}

// NewMapper builds a mapper from the key bindings. Letters match in
// either case.
func NewMapper(keys config.Keys) *Mapper {
	m := &Mapper{
		lanes:  make(map[rune]ir.Lane, ir.LaneCount),
		window: keys.RepeatWindow(),
		delay:  keys.RepeatDelay(),
	}
	for i, r := range keys.LaneKeys() {
		if i >= ir.LaneCount {
			break
		}
		m.lanes[unicode.ToLower(r)] = ir.Lane(i)
	}
	return m
}

// Map classifies ev using the time it was generated.
func (m *Mapper) Map(ev *tcell.EventKey) (Action, ir.Lane) {
	return m.Handle(ev, ev.When())
}

// Handle classifies ev as if it arrived at the given time.
func (m *Mapper) Handle(ev *tcell.EventKey, at time.Time) (Action, ir.Lane) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, 0
	case tcell.KeyRune:
	default:
		return ActionNone, 0
	}

	lane, ok := m.lanes[unicode.ToLower(ev.Rune())]
	if !ok {
		return ActionNone, 0
	}

	prev := m.last[lane]
	m.last[lane] = at

	limit := m.window
	if !m.repeating[lane] && m.delay > limit {
		limit = m.delay
	}
	if !prev.IsZero() && limit > 0 && at.Sub(prev) < limit {
		m.repeating[lane] = true
		return ActionNone, 0
	}
	m.repeating[lane] = false
	return ActionLane, lane
}

// Pump reads events from screen and enqueues a KeyPress for every lane
// edge. It returns when the player quits, the screen is finalised, ctx
// is cancelled, or out stops accepting events. onQuit runs only when the
// player quits.
func Pump(ctx context.Context, screen tcell.Screen, m *Mapper, out engine.Enqueuer, onQuit func()) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev := screen.PollEvent()
		if ev == nil {
			return
		}

		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		action, lane := m.Map(key)
		switch action {
		case ActionQuit:
			slog.Info("quit requested", "key", key.Name())
			if onQuit != nil {
				onQuit()
			}
			return
		case ActionLane:
			if !out.Enqueue(ir.KeyPress{Lane: lane}) {
				return
			}
		}
	}
}
