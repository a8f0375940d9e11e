package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLane_String(t *testing.T) {
	assert.Equal(t, "green", LaneGreen.String())
	assert.Equal(t, "red", LaneRed.String())
	assert.Equal(t, "blue", LaneBlue.String())
	assert.Equal(t, "yellow", LaneYellow.String())
	assert.Equal(t, "lane(9)", Lane(9).String())
}

func TestLane_Valid(t *testing.T) {
	for _, l := range Lanes {
		assert.True(t, l.Valid(), l.String())
	}
	assert.False(t, Lane(4).Valid())
}

func TestLaneForPitch(t *testing.T) {
	tests := []struct {
		pitch int
		want  Lane
	}{
		{60, LaneGreen},
		{61, LaneRed},
		{62, LaneBlue},
		{63, LaneYellow},
		{21, LaneRed},
		{-1, LaneYellow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LaneForPitch(tt.pitch), "pitch %d", tt.pitch)
	}
}

func TestInitialState(t *testing.T) {
	s := InitialState()
	assert.False(t, s.GameEnded)
	assert.Empty(t, s.FallingNotes)
	assert.Empty(t, s.ExpiredNotes)
	assert.Empty(t, s.NotesToSound)
	assert.Equal(t, 1.0, s.Multiplier)
	assert.Zero(t, s.Score)
	assert.False(t, s.Drained())
}

func TestState_Drained(t *testing.T) {
	s := InitialState()
	s.GameEnded = true
	assert.True(t, s.Drained())

	s.FallingNotes = []FallingNote{{ID: 1}}
	assert.False(t, s.Drained())
}

func TestEvent_RoundTripThroughStorageCodec(t *testing.T) {
	events := []Event{
		Tick{Time: 42},
		SpawnNote{Note: PlayableNote{PlayerLane: true, Instrument: "Guitar", Velocity: 0.1 + 0.2, Pitch: 64, Start: 1.25, End: 1.5}},
		KeyPress{Lane: LaneYellow},
		End{},
	}

	for _, ev := range events {
		t.Run(string(ev.Kind()), func(t *testing.T) {
			kind, data, err := MarshalEvent(ev)
			require.NoError(t, err)
			assert.Equal(t, ev.Kind(), kind)

			got, err := UnmarshalEvent(kind, data)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestUnmarshalEvent_Errors(t *testing.T) {
	_, err := UnmarshalEvent("bogus", []byte(`{}`))
	assert.Error(t, err)

	_, err = UnmarshalEvent(KindKey, []byte(`{"lane":7}`))
	assert.ErrorContains(t, err, "invalid lane")

	_, err = UnmarshalEvent(KindTick, []byte(`not json`))
	assert.Error(t, err)

	_, _, err = MarshalEvent(nil)
	assert.Error(t, err)
}
