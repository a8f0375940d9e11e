package chart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

const sample = `user_played,instrument_name,velocity,pitch,start,end
True,Piano,69,60,0.5,0.75
False,Bass-Electric,50,36,0.25,1.5
True,Piano,70,63,1.0,1.25
`

func TestParse_Sample(t *testing.T) {
	c, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, c.Notes, 3)
	assert.Equal(t, ir.PlayableNote{PlayerLane: true, Instrument: "Piano", Velocity: 69, Pitch: 60, Start: 0.5, End: 0.75}, c.Notes[0])
	assert.False(t, c.Notes[1].PlayerLane)
	assert.Equal(t, "Bass-Electric", c.Notes[1].Instrument)
	assert.Zero(t, c.Skipped)
	assert.Equal(t, 1.5, c.Duration())
	assert.Equal(t, 2, c.PlayerNotes())
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	src := `user_played,instrument_name,velocity,pitch,start,end
True,Piano,69,60,0.5,0.75
Maybe,Piano,69,60,0.5,0.75
True,Piano,loud,60,0.5,0.75
True,Piano,69,200,0.5,0.75
True,Piano,69,60,-1,0.75
True,Piano,69,60,0.5,0.25
True,,69,60,0.5,0.75
True,Piano,69
false,Piano,10,61,2,3
`
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Len(t, c.Notes, 2)
	assert.Equal(t, 7, c.Skipped)
	assert.Equal(t, 61, c.Notes[1].Pitch)
}

func TestParse_RejectsNonFiniteNumbers(t *testing.T) {
	src := `user_played,instrument_name,velocity,pitch,start,end
True,Piano,69,60,0.5,0.75
False,Bass,NaN,36,0.5,1
False,Bass,50,36,NaN,NaN
True,Piano,69,60,0.5,NaN
True,Piano,69,60,+Inf,+Inf
True,Piano,69,60,0.5,Inf
True,Piano,-Inf,60,0.5,1
`
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Len(t, c.Notes, 1)
	assert.Equal(t, 6, c.Skipped)
	assert.Equal(t, 0.75, c.Duration())
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	c, err := Parse(strings.NewReader("user_played,instrument_name,velocity,pitch,start,end\n\nTrue,Piano,1,60,0,1\n\n"))
	require.NoError(t, err)
	assert.Len(t, c.Notes, 1)
	assert.Zero(t, c.Skipped)
}

func TestParse_MissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("True,Piano,69,60,0.5,0.75\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseError_Format(t *testing.T) {
	err := &ParseError{Line: 4, Field: "pitch", Err: errors.New("out of range: 200")}
	assert.Equal(t, "line 4: pitch: out of range: 200", err.Error())
	assert.Equal(t, "line 2: boom", (&ParseError{Line: 2, Err: errors.New("boom")}).Error())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Notes, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoad_DemoSong(t *testing.T) {
	c, err := Load("../../songs/demo.csv")
	require.NoError(t, err)
	assert.Len(t, c.Notes, 40)
	assert.Equal(t, 32, c.PlayerNotes())
	assert.Equal(t, 0, c.Skipped)
	assert.InDelta(t, 16.9, c.Duration(), 1e-9)
}
