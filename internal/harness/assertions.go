package harness

import (
	"fmt"
	"slices"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/rng"
)

// AssertionError is reported when an expectation does not hold.
type AssertionError struct {
	Field    string // Expectation key, e.g. "score"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect %s: expected %s, actual %s", e.Field, e.Expected, e.Actual)
}

func mismatch(field string, expected, actual any) string {
	return (&AssertionError{
		Field:    field,
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(actual),
	}).Error()
}

// EvaluateExpectations compares the final state with every set field of
// exp and returns one message per mismatch.
func EvaluateExpectations(s ir.State, exp Expectation) []string {
	var errs []string

	if exp.Score != nil && s.Score != *exp.Score {
		errs = append(errs, mismatch("score", *exp.Score, s.Score))
	}
	if exp.Combo != nil && s.Combo != *exp.Combo {
		errs = append(errs, mismatch("combo", *exp.Combo, s.Combo))
	}
	if exp.Multiplier != nil && s.Multiplier != *exp.Multiplier {
		errs = append(errs, mismatch("multiplier", *exp.Multiplier, s.Multiplier))
	}
	if exp.MissCount != nil && s.MissCount != *exp.MissCount {
		errs = append(errs, mismatch("miss_count", *exp.MissCount, s.MissCount))
	}
	if exp.Ended != nil && s.GameEnded != *exp.Ended {
		errs = append(errs, mismatch("ended", *exp.Ended, s.GameEnded))
	}
	if exp.Drained != nil && s.Drained() != *exp.Drained {
		errs = append(errs, mismatch("drained", *exp.Drained, s.Drained()))
	}
	if exp.SpawnCounter != nil && s.SpawnCounter != *exp.SpawnCounter {
		errs = append(errs, mismatch("spawn_counter", *exp.SpawnCounter, s.SpawnCounter))
	}
	if exp.FallingCount != nil && len(s.FallingNotes) != *exp.FallingCount {
		errs = append(errs, mismatch("falling_count", *exp.FallingCount, len(s.FallingNotes)))
	}
	if exp.FallingIDs != nil {
		if ids := noteIDs(s.FallingNotes); !slices.Equal(ids, exp.FallingIDs) {
			errs = append(errs, mismatch("falling_ids", exp.FallingIDs, ids))
		}
	}
	if exp.Positions != nil {
		if pos := positions(s.FallingNotes); !slices.Equal(pos, exp.Positions) {
			errs = append(errs, mismatch("positions", exp.Positions, pos))
		}
	}
	if exp.ExpiredIDs != nil {
		if ids := noteIDs(s.ExpiredNotes); !slices.Equal(ids, exp.ExpiredIDs) {
			errs = append(errs, mismatch("expired_ids", exp.ExpiredIDs, ids))
		}
	}
	if exp.SoundCount != nil && len(s.NotesToSound) != *exp.SoundCount {
		errs = append(errs, mismatch("sound_count", *exp.SoundCount, len(s.NotesToSound)))
	}
	if exp.Substitute != nil {
		if got := soundedSubstitute(s); got != *exp.Substitute {
			errs = append(errs, mismatch("substitute", *exp.Substitute, got))
		}
	}

	return errs
}

// soundedSubstitute reports whether the step sounded exactly the
// generated miss note for the current clock.
func soundedSubstitute(s ir.State) bool {
	return len(s.NotesToSound) == 1 && s.NotesToSound[0] == rng.RandomNote(s.ClockTime)
}

// CheckInvariants verifies the properties every step must keep,
// comparing the state before and after ev.
func CheckInvariants(rules engine.Rules, prev ir.State, ev ir.Event, next ir.State) []string {
	var errs []string

	if next.Multiplier != engine.Multiplier(next.Combo) {
		errs = append(errs, fmt.Sprintf("multiplier %v does not match combo %d", next.Multiplier, next.Combo))
	}
	if next.Combo < 0 || next.Score < 0 || next.MissCount < prev.MissCount {
		errs = append(errs, fmt.Sprintf("counters went backwards: combo=%d score=%d misses=%d", next.Combo, next.Score, next.MissCount))
	}
	if rules.Miss.Penalty == 0 && next.Score < prev.Score {
		errs = append(errs, fmt.Sprintf("score decreased from %d to %d without a miss penalty", prev.Score, next.Score))
	}
	if prev.GameEnded && !next.GameEnded {
		errs = append(errs, "game_ended was cleared")
	}
	if next.SpawnCounter < prev.SpawnCounter {
		errs = append(errs, fmt.Sprintf("spawn counter decreased from %d to %d", prev.SpawnCounter, next.SpawnCounter))
	}

	seen := make(map[int64]bool, len(next.FallingNotes))
	for _, n := range next.FallingNotes {
		if seen[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate falling id %d", n.ID))
		}
		seen[n.ID] = true
		if n.ID >= next.SpawnCounter {
			errs = append(errs, fmt.Sprintf("falling id %d not below spawn counter %d", n.ID, next.SpawnCounter))
		}
	}

	before := noteIDs(prev.FallingNotes)
	for _, n := range next.ExpiredNotes {
		if !slices.Contains(before, n.ID) {
			errs = append(errs, fmt.Sprintf("expired id %d was not falling", n.ID))
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Sprintf("expired id %d is still falling", n.ID))
		}
	}

	switch ev.(type) {
	case ir.End:
		if len(next.ExpiredNotes) > 0 || len(next.NotesToSound) > 0 {
			errs = append(errs, "end step produced expired or sounded notes")
		}
	case ir.Tick:
		if len(next.NotesToSound) > 0 {
			errs = append(errs, "tick step produced sounded notes")
		}
	}

	return errs
}

func noteIDs(notes []ir.FallingNote) []int64 {
	ids := make([]int64, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}

func positions(notes []ir.FallingNote) []float64 {
	pos := make([]float64, len(notes))
	for i, n := range notes {
		pos[i] = n.Position
	}
	return pos
}
