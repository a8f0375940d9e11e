package render

import (
	"math"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Rows reserved above and below the track.
const (
	hudRows    = 2
	footerRows = 1
)

// Layout maps track geometry onto a grid of terminal cells.
type Layout struct {
	Geometry config.Geometry
	Cols     int
	Rows     int
}

// NewLayout returns the layout for a screen of cols by rows cells.
func NewLayout(g config.Geometry, cols, rows int) Layout {
	return Layout{Geometry: g, Cols: cols, Rows: rows}
}

// TrackTop is the row where position 0 is drawn.
func (l Layout) TrackTop() int {
	return hudRows
}

// TrackBottom is the row where TrackLength is drawn.
func (l Layout) TrackBottom() int {
	return max(l.TrackTop(), l.Rows-footerRows-1)
}

// Row returns the screen row for a track position. Positions past either
// end of the track are pinned to it.
func (l Layout) Row(pos float64) int {
	span := l.TrackBottom() - l.TrackTop()
	if span <= 0 || l.Geometry.TrackLength <= 0 {
		return l.TrackTop()
	}
	frac := min(max(pos/l.Geometry.TrackLength, 0), 1)
	return l.TrackTop() + int(math.Round(frac*float64(span)))
}

// HitRow is the row the hit line is drawn on.
func (l Layout) HitRow() int {
	return l.Row(l.Geometry.HitLine)
}

// Col returns the screen column of a lane's centre.
func (l Layout) Col(lane ir.Lane) int {
	if l.Geometry.Width <= 0 || l.Cols <= 1 {
		return 0
	}
	frac := l.Geometry.LaneCenter(lane) / l.Geometry.Width
	return int(math.Round(frac * float64(l.Cols-1)))
}

// Fits reports whether the screen is large enough to draw the track.
func (l Layout) Fits() bool {
	return l.Cols >= ir.LaneCount*2 && l.Rows > hudRows+footerRows+1
}
