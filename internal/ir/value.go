package ir

import (
	"math"
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface over the value types that canonical JSON
// accepts. There is no float variant: floats enter as Float, which carries
// the IEEE-754 bit pattern as an integer.
type IRValue interface {
	irValue()
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// Float encodes f by its bit pattern. Two floats encode equally iff they are
// bit-identical, which is the equality replay verification needs.
func Float(f float64) IRInt {
	return IRInt(int64(math.Float64bits(f)))
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string ordering compares UTF-8 bytes, which differs for
// supplementary-plane characters.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// ToIR converts a PlayableNote to its canonical form.
func (n PlayableNote) ToIR() IRObject {
	return IRObject{
		"user_played":     IRBool(n.PlayerLane),
		"instrument_name": IRString(n.Instrument),
		"velocity":        Float(n.Velocity),
		"pitch":           IRInt(n.Pitch),
		"start":           Float(n.Start),
		"end":             Float(n.End),
	}
}

// ToIR converts a FallingNote to its canonical form.
func (n FallingNote) ToIR() IRObject {
	return IRObject{
		"id":       IRInt(n.ID),
		"lane":     IRInt(n.Lane),
		"position": Float(n.Position),
		"source":   n.Source.ToIR(),
	}
}

// ToIR converts a State to its canonical form.
func (s State) ToIR() IRObject {
	falling := make(IRArray, len(s.FallingNotes))
	for i, n := range s.FallingNotes {
		falling[i] = n.ToIR()
	}
	expired := make(IRArray, len(s.ExpiredNotes))
	for i, n := range s.ExpiredNotes {
		expired[i] = n.ToIR()
	}
	sound := make(IRArray, len(s.NotesToSound))
	for i, n := range s.NotesToSound {
		sound[i] = n.ToIR()
	}
	return IRObject{
		"game_ended":     IRBool(s.GameEnded),
		"falling_notes":  falling,
		"expired_notes":  expired,
		"notes_to_sound": sound,
		"score":          IRInt(s.Score),
		"combo":          IRInt(s.Combo),
		"multiplier":     Float(s.Multiplier),
		"miss_count":     IRInt(s.MissCount),
		"spawn_counter":  IRInt(s.SpawnCounter),
		"clock_time":     IRInt(s.ClockTime),
	}
}

// EventToIR converts an event to its canonical form, tagged with its kind.
func EventToIR(ev Event) IRObject {
	obj := IRObject{"kind": IRString(ev.Kind())}
	switch e := ev.(type) {
	case Tick:
		obj["time"] = IRInt(e.Time)
	case SpawnNote:
		obj["note"] = e.Note.ToIR()
	case KeyPress:
		obj["lane"] = IRInt(e.Lane)
	case End:
	}
	return obj
}
