// Package rng generates the substitute note played when a key press hits
// nothing. The generator is a linear congruential hash chained three times,
// so the same seed always yields the same note.
package rng

import (
	"math"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// LCG parameters (glibc-style).
const (
	A uint64 = 1103515245
	C uint64 = 12345
	M uint64 = 1 << 31
)

// Pitch range of a substitute note: the 88 piano keys.
const (
	MinPitch = 21
	MaxPitch = 108
)

// MaxDuration is the longest substitute note, in seconds.
const MaxDuration = 0.5

// SubstituteInstrument is the instrument name given to generated notes.
const SubstituteInstrument = "piano"

// Hash returns (A*seed + C) mod M. The product wraps modulo 2^64, which is
// exact modulo M because M divides 2^64.
func Hash(seed int64) int64 {
	return int64((A*uint64(seed) + C) % M)
}

// Scale maps h in [0, M-1] linearly onto [lo, hi].
func Scale(h int64, lo, hi float64) float64 {
	return lo + float64(h)/float64(M-1)*(hi-lo)
}

// RandomNote derives a background note from seed. Velocity is unit-scale;
// any gain is applied by the audio layer.
func RandomNote(seed int64) ir.PlayableNote {
	h1 := Hash(seed)
	h2 := Hash(h1)
	h3 := Hash(h2)
	return ir.PlayableNote{
		PlayerLane: false,
		Instrument: SubstituteInstrument,
		Velocity:   Scale(h1, 0, 1),
		Pitch:      int(math.Floor(Scale(h2, MinPitch, MaxPitch))),
		Start:      0,
		End:        Scale(h3, 0, MaxDuration),
	}
}
