package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

func TestIsHit(t *testing.T) {
	g := config.Default().Geometry

	assert.True(t, IsHit(g, ir.LaneBlue, falling(0, ir.LaneBlue, 349)))
	assert.False(t, IsHit(g, ir.LaneRed, falling(0, ir.LaneBlue, 349)), "wrong lane")
	assert.False(t, IsHit(g, ir.LaneBlue, falling(0, ir.LaneBlue, 336)), "radius is strict")
	assert.False(t, IsHit(g, ir.LaneBlue, falling(0, ir.LaneBlue, 10)))
	assert.False(t, IsHit(g, ir.Lane(4), falling(0, ir.Lane(4), 350)), "invalid lane")
}

func TestIsHit_UsesGeometry(t *testing.T) {
	g := config.Default().Geometry
	g.HitRadius = 30

	assert.True(t, IsHit(g, ir.LaneGreen, falling(0, ir.LaneGreen, 325)))
}

func TestPartitionHits_PreservesOrder(t *testing.T) {
	g := config.Default().Geometry
	notes := []ir.FallingNote{
		falling(0, ir.LaneGreen, 100),
		falling(1, ir.LaneGreen, 340),
		falling(2, ir.LaneRed, 350),
		falling(3, ir.LaneGreen, 360),
	}

	hit, remaining := PartitionHits(g, ir.LaneGreen, notes)

	assert.Equal(t, []ir.FallingNote{notes[1], notes[3]}, hit)
	assert.Equal(t, []ir.FallingNote{notes[0], notes[2]}, remaining)
	assert.Len(t, notes, 4, "input untouched")
}

func TestPartitionHits_Empty(t *testing.T) {
	hit, remaining := PartitionHits(config.Default().Geometry, ir.LaneGreen, nil)
	assert.Empty(t, hit)
	assert.Empty(t, remaining)
}
