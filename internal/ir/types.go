package ir

import "fmt"

// Lane identifies one of the four tracks a note travels down.
type Lane uint8

// The four lanes, left to right.
const (
	LaneGreen Lane = iota
	LaneRed
	LaneBlue
	LaneYellow
)

// LaneCount is the number of lanes on the track.
const LaneCount = 4

// Lanes lists every lane in display order.
var Lanes = [LaneCount]Lane{LaneGreen, LaneRed, LaneBlue, LaneYellow}

// Valid reports whether l names one of the four lanes.
func (l Lane) Valid() bool {
	return l < LaneCount
}

func (l Lane) String() string {
	switch l {
	case LaneGreen:
		return "green"
	case LaneRed:
		return "red"
	case LaneBlue:
		return "blue"
	case LaneYellow:
		return "yellow"
	default:
		return fmt.Sprintf("lane(%d)", uint8(l))
	}
}

// LaneForPitch maps a MIDI pitch onto a lane (pitch mod 4).
// Negative pitches wrap the same way positive ones do.
func LaneForPitch(pitch int) Lane {
	return Lane(((pitch % LaneCount) + LaneCount) % LaneCount)
}

// PlayableNote is one entry of the score schedule, or a generated
// substitute note. It is never mutated after creation.
type PlayableNote struct {
	PlayerLane bool    `json:"user_played"`
	Instrument string  `json:"instrument_name"`
	Velocity   float64 `json:"velocity"`
	Pitch      int     `json:"pitch"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

// Duration returns the note length in seconds.
func (n PlayableNote) Duration() float64 {
	return n.End - n.Start
}

// FallingNote is a player note travelling down its lane.
// Created only by SpawnNote; owned by State until hit or expired.
type FallingNote struct {
	ID       int64        `json:"id"`
	Lane     Lane         `json:"lane"`
	Position float64      `json:"position"`
	Source   PlayableNote `json:"source"`
}

// State is the complete game state after some prefix of the event stream.
//
// State is replaced wholesale on each event. ExpiredNotes and NotesToSound
// describe only the most recent step; consumers read them and move on.
type State struct {
	GameEnded    bool           `json:"game_ended"`
	FallingNotes []FallingNote  `json:"falling_notes"`
	ExpiredNotes []FallingNote  `json:"expired_notes"`
	NotesToSound []PlayableNote `json:"notes_to_sound"`
	Score        int64          `json:"score"`
	Combo        int            `json:"combo"`
	Multiplier   float64        `json:"multiplier"`
	MissCount    int            `json:"miss_count"`
	SpawnCounter int64          `json:"spawn_counter"`
	ClockTime    int64          `json:"clock_time"`
}

// InitialState returns the state before any event has been applied.
func InitialState() State {
	return State{
		FallingNotes: []FallingNote{},
		ExpiredNotes: []FallingNote{},
		NotesToSound: []PlayableNote{},
		Multiplier:   1,
	}
}

// Drained reports whether the song has ended and every note has left the
// track. Renderers show the game-over banner from this point on.
func (s State) Drained() bool {
	return s.GameEnded && len(s.FallingNotes) == 0
}
