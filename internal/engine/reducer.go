package engine

import (
	"math"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/rng"
)

// Rules is the fixed context every step is evaluated under.
type Rules struct {
	Geometry config.Geometry
	Miss     config.MissPolicy
}

// NewRules extracts the reducer's rules from a full configuration.
func NewRules(cfg config.Config) Rules {
	return Rules{Geometry: cfg.Geometry, Miss: cfg.Miss}
}

// DefaultRules returns the rules of config.Default().
func DefaultRules() Rules {
	return NewRules(config.Default())
}

// Multiplier returns the score multiplier for a combo: 1.0, rising by 0.2
// for every ten consecutive hits.
func Multiplier(combo int) float64 {
	if combo < 0 {
		combo = 0
	}
	// (5 + k) / 5 keeps 1.2, 1.4, ... bit-identical to their decimal literals.
	return float64(5+combo/10) / 5
}

// Apply returns the state after ev. It never fails and never modifies s.
//
// ExpiredNotes and NotesToSound always describe only this step.
func Apply(r Rules, s ir.State, ev ir.Event) ir.State {
	switch e := ev.(type) {
	case ir.Tick:
		return applyTick(r, s, e)
	case ir.SpawnNote:
		return applySpawn(s, e)
	case ir.KeyPress:
		return applyKeyPress(r, s, e)
	case ir.End:
		return applyEnd(s)
	default:
		return beginStep(s)
	}
}

// Fold applies events in order and returns the final state.
func Fold(r Rules, s ir.State, events []ir.Event) ir.State {
	for _, ev := range events {
		s = Apply(r, s, ev)
	}
	return s
}

// Trace applies events in order and returns the state after each one.
func Trace(r Rules, s ir.State, events []ir.Event) []ir.State {
	states := make([]ir.State, 0, len(events))
	for _, ev := range events {
		s = Apply(r, s, ev)
		states = append(states, s)
	}
	return states
}

// beginStep copies s with fresh per-step buffers.
func beginStep(s ir.State) ir.State {
	next := s
	next.FallingNotes = append([]ir.FallingNote{}, s.FallingNotes...)
	next.ExpiredNotes = []ir.FallingNote{}
	next.NotesToSound = []ir.PlayableNote{}
	return next
}

func applyTick(r Rules, s ir.State, e ir.Tick) ir.State {
	next := beginStep(s)

	remaining := make([]ir.FallingNote, 0, len(s.FallingNotes))
	for _, n := range s.FallingNotes {
		if n.Position > r.Geometry.TrackLength {
			next.ExpiredNotes = append(next.ExpiredNotes, n)
			continue
		}
		n.Position += r.Geometry.Step
		remaining = append(remaining, n)
	}
	next.FallingNotes = remaining
	next.ClockTime = e.Time

	if len(next.ExpiredNotes) > 0 {
		next.Combo = 0
		next.Multiplier = 1
		next.MissCount += len(next.ExpiredNotes)
	}
	return next
}

func applySpawn(s ir.State, e ir.SpawnNote) ir.State {
	next := beginStep(s)
	if s.GameEnded {
		return next
	}

	if !e.Note.PlayerLane {
		next.NotesToSound = append(next.NotesToSound, e.Note)
		return next
	}

	next.FallingNotes = append(next.FallingNotes, ir.FallingNote{
		ID:       s.SpawnCounter,
		Lane:     ir.LaneForPitch(e.Note.Pitch),
		Position: 0,
		Source:   e.Note,
	})
	next.SpawnCounter = s.SpawnCounter + 1
	return next
}

func applyKeyPress(r Rules, s ir.State, e ir.KeyPress) ir.State {
	next := beginStep(s)
	if s.Drained() {
		return next
	}

	hit, remaining := PartitionHits(r.Geometry, e.Lane, s.FallingNotes)
	if len(hit) > 0 {
		next.Combo = s.Combo + len(hit)
		next.Multiplier = Multiplier(next.Combo)
		next.Score = int64(math.Round(float64(s.Score) + float64(len(hit))*next.Multiplier))
		next.FallingNotes = remaining
		next.ExpiredNotes = hit
		for _, n := range hit {
			next.NotesToSound = append(next.NotesToSound, n.Source)
		}
		return next
	}

	next.Combo = 0
	next.Multiplier = 1
	if r.Miss.Penalty > 0 {
		next.Score = max(0, s.Score-r.Miss.Penalty)
	}
	if r.Miss.Substitute {
		next.NotesToSound = append(next.NotesToSound, rng.RandomNote(s.ClockTime))
	}
	return next
}

func applyEnd(s ir.State) ir.State {
	next := beginStep(s)
	next.GameEnded = true
	return next
}
