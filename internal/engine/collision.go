package engine

import (
	"math"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// IsHit reports whether a press on lane collects note n: the note must be in
// that lane and strictly closer than HitRadius to the hit line.
func IsHit(g config.Geometry, lane ir.Lane, n ir.FallingNote) bool {
	if !lane.Valid() || n.Lane != lane {
		return false
	}
	return math.Abs(g.HitLine-n.Position) < g.HitRadius
}

// PartitionHits splits notes into those a press on lane collects and the
// rest. Both results keep the input order; the input is not modified.
func PartitionHits(g config.Geometry, lane ir.Lane, notes []ir.FallingNote) (hit, remaining []ir.FallingNote) {
	hit = []ir.FallingNote{}
	remaining = make([]ir.FallingNote, 0, len(notes))
	for _, n := range notes {
		if IsHit(g, lane, n) {
			hit = append(hit, n)
		} else {
			remaining = append(remaining, n)
		}
	}
	return hit, remaining
}
