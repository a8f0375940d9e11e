// Package render draws game state to a terminal with tcell.
//
// Terminal is a runner sink: every step redraws the full frame from the
// state it carries. Layout holds the pure geometry-to-cell mapping.
package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Glyphs.
const (
	noteRune = '●'
	railRune = '│'
	lineRune = '─'
)

// LaneColor returns the display colour of a lane.
func LaneColor(l ir.Lane) tcell.Color {
	switch l {
	case ir.LaneGreen:
		return tcell.ColorGreen
	case ir.LaneRed:
		return tcell.ColorRed
	case ir.LaneBlue:
		return tcell.ColorBlue
	case ir.LaneYellow:
		return tcell.ColorYellow
	default:
		return tcell.ColorWhite
	}
}

// Terminal renders states onto a tcell screen.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	geometry config.Geometry
	keys     []rune
	song     string
}

// NewTerminal creates a renderer for an initialised screen.
func NewTerminal(screen tcell.Screen, cfg config.Config) *Terminal {
	return &Terminal{
		screen:   screen,
		geometry: cfg.Geometry,
		keys:     cfg.Keys.LaneKeys(),
		song:     cfg.Song.Name,
	}
}

// Consume draws the state of one step.
func (t *Terminal) Consume(_ context.Context, step engine.Step) error {
	t.Draw(step.State)
	return nil
}

// Draw renders a full frame for s and shows it.
func (t *Terminal) Draw(s ir.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	cols, rows := t.screen.Size()
	layout := NewLayout(t.geometry, cols, rows)

	t.drawHUD(s, cols)
	if !layout.Fits() {
		t.putString(0, 1, "terminal too small", tcell.StyleDefault.Foreground(tcell.ColorRed))
		t.screen.Show()
		return
	}

	t.drawTrack(layout)
	for _, n := range s.FallingNotes {
		style := tcell.StyleDefault.Foreground(LaneColor(n.Lane)).Bold(true)
		t.screen.SetContent(layout.Col(n.Lane), layout.Row(n.Position), noteRune, nil, style)
	}

	if s.Drained() {
		msg := fmt.Sprintf(" GAME OVER  score %d ", s.Score)
		t.putString((cols-len(msg))/2, rows/2, msg, tcell.StyleDefault.Reverse(true).Bold(true))
	}

	t.screen.Show()
}

func (t *Terminal) drawHUD(s ir.State, cols int) {
	hud := fmt.Sprintf("%s  Score %d  Combo %d  x%.1f  Misses %d",
		t.song, s.Score, s.Combo, s.Multiplier, s.MissCount)
	if len(hud) > cols {
		hud = hud[:cols]
	}
	t.putString(0, 0, hud, tcell.StyleDefault.Bold(true))
}

func (t *Terminal) drawTrack(layout Layout) {
	hit := layout.HitRow()
	for x := 0; x < layout.Cols; x++ {
		t.screen.SetContent(x, hit, lineRune, nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}

	for _, lane := range ir.Lanes {
		x := layout.Col(lane)
		rail := tcell.StyleDefault.Foreground(LaneColor(lane)).Dim(true)
		for y := layout.TrackTop(); y <= layout.TrackBottom(); y++ {
			if y == hit {
				continue
			}
			t.screen.SetContent(x, y, railRune, nil, rail)
		}
		if int(lane) < len(t.keys) {
			key := tcell.StyleDefault.Foreground(LaneColor(lane)).Bold(true)
			t.screen.SetContent(x, layout.Rows-1, t.keys[lane], nil, key)
		}
	}
}

func (t *Terminal) putString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
