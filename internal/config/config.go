// Package config loads game configuration from CUE.
//
// The embedded schema (schema.cue) defines every field with its default and
// constraints. A user file is unified with #Config, checked for concreteness,
// and decoded into Config. The same Geometry value is handed to the reducer
// and the renderer.
package config

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

//go:embed schema.cue
var schemaCUE []byte

// Config is the complete game configuration.
type Config struct {
	Geometry Geometry    `json:"geometry"`
	Timing   Timing      `json:"timing"`
	Keys     Keys        `json:"keys"`
	Miss     MissPolicy  `json:"miss"`
	Audio    AudioConfig `json:"audio"`
	Song     Song        `json:"song"`
}

// Geometry is the track layout shared by collision detection and rendering.
type Geometry struct {
	TrackLength float64   `json:"track_length"`
	HitLine     float64   `json:"hit_line"`
	HitRadius   float64   `json:"hit_radius"`
	Step        float64   `json:"step"`
	Width       float64   `json:"width"`
	LaneX       []float64 `json:"lane_x"`
}

// LaneCenter returns the horizontal centre of lane l in track units.
func (g Geometry) LaneCenter(l ir.Lane) float64 {
	if !l.Valid() || int(l) >= len(g.LaneX) {
		return 0
	}
	return g.LaneX[l] * g.Width
}

// Timing holds the clock settings.
type Timing struct {
	TickPeriodMS int `json:"tick_period_ms"`
	StartDelayMS int `json:"start_delay_ms"`
}

// TickPeriod is the interval between Tick events.
func (t Timing) TickPeriod() time.Duration {
	return time.Duration(t.TickPeriodMS) * time.Millisecond
}

// StartDelay is the pause between opening the screen and song start.
func (t Timing) StartDelay() time.Duration {
	return time.Duration(t.StartDelayMS) * time.Millisecond
}

// Keys binds keyboard keys to lanes.
type Keys struct {
	Lanes          string `json:"lanes"`
	RepeatWindowMS int    `json:"repeat_window_ms"`
	// RepeatDelayMS covers the pause before a held key starts repeating.
	// Zero disables it, so fast taps on one lane are never dropped.
	RepeatDelayMS int `json:"repeat_delay_ms"`
}

// LaneKeys returns the bound key for each lane, left to right.
func (k Keys) LaneKeys() []rune {
	return []rune(k.Lanes)
}

// RepeatWindow is the interval within which a second press of the same key
// is treated as auto-repeat.
func (k Keys) RepeatWindow() time.Duration {
	return time.Duration(k.RepeatWindowMS) * time.Millisecond
}

// RepeatDelay is the interval after a fresh press within which the first
// auto-repeat of a held key is expected.
func (k Keys) RepeatDelay() time.Duration {
	return time.Duration(k.RepeatDelayMS) * time.Millisecond
}

// MissPolicy decides what a key press that hits nothing costs.
type MissPolicy struct {
	// Penalty is subtracted from the score, clamped at zero.
	Penalty int64 `json:"penalty"`
	// Substitute plays a generated note so the miss is audible.
	Substitute bool `json:"substitute"`
}

// AudioConfig controls playback.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	Gain       float64 `json:"gain"`
	SampleRate int     `json:"sample_rate"`
}

// Song names the chart being played.
type Song struct {
	Name string `json:"name"`
}

var defaultConfig = sync.OnceValue(func() Config {
	cfg, err := LoadBytes("defaults", nil)
	if err != nil {
		panic(fmt.Sprintf("embedded config schema is invalid: %v", err))
	}
	return cfg
})

// Default returns the configuration an empty file produces.
func Default() Config {
	cfg := defaultConfig()
	cfg.Geometry.LaneX = append([]float64(nil), cfg.Geometry.LaneX...)
	return cfg
}

// Check performs the validations CUE cannot express.
func (c Config) Check() []error {
	var errs []error
	if len(c.Geometry.LaneX) != ir.LaneCount {
		errs = append(errs, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("geometry.lane_x: want %d entries, got %d", ir.LaneCount, len(c.Geometry.LaneX))})
	}
	if c.Geometry.HitLine > c.Geometry.TrackLength {
		errs = append(errs, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("geometry.hit_line %g lies beyond track_length %g", c.Geometry.HitLine, c.Geometry.TrackLength)})
	}
	seen := make(map[rune]int)
	for i, r := range c.Keys.LaneKeys() {
		if prev, ok := seen[r]; ok {
			errs = append(errs, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("keys.lanes: %q bound to lanes %d and %d", r, prev, i)})
			continue
		}
		seen[r] = i
	}
	return errs
}

// Hash returns a canonical fingerprint of the configuration. Sessions record
// it so a replay can tell whether it is running under the same rules.
func (c Config) Hash() string {
	laneX := make(ir.IRArray, len(c.Geometry.LaneX))
	for i, x := range c.Geometry.LaneX {
		laneX[i] = ir.Float(x)
	}
	obj := ir.IRObject{
		"geometry": ir.IRObject{
			"track_length": ir.Float(c.Geometry.TrackLength),
			"hit_line":     ir.Float(c.Geometry.HitLine),
			"hit_radius":   ir.Float(c.Geometry.HitRadius),
			"step":         ir.Float(c.Geometry.Step),
			"width":        ir.Float(c.Geometry.Width),
			"lane_x":       laneX,
		},
		"timing": ir.IRObject{
			"tick_period_ms": ir.IRInt(c.Timing.TickPeriodMS),
			"start_delay_ms": ir.IRInt(c.Timing.StartDelayMS),
		},
		"keys": ir.IRObject{
			"lanes":            ir.IRString(c.Keys.Lanes),
			"repeat_window_ms": ir.IRInt(c.Keys.RepeatWindowMS),
			"repeat_delay_ms":  ir.IRInt(c.Keys.RepeatDelayMS),
		},
		"miss": ir.IRObject{
			"penalty":    ir.IRInt(c.Miss.Penalty),
			"substitute": ir.IRBool(c.Miss.Substitute),
		},
		"audio": ir.IRObject{
			"enabled":     ir.IRBool(c.Audio.Enabled),
			"gain":        ir.Float(c.Audio.Gain),
			"sample_rate": ir.IRInt(c.Audio.SampleRate),
		},
		"song": ir.IRObject{
			"name": ir.IRString(c.Song.Name),
		},
	}
	h, err := ir.HashCanonical(ir.DomainConfig, obj)
	if err != nil {
		panic(err)
	}
	return h
}
