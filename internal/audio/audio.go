// Package audio plays the notes each game step asks to sound.
//
// Every entry of State.NotesToSound becomes one voice on a beep mixer,
// with a harmonic recipe chosen by the note's instrument. The reducer never
// touches audio; players are runner sinks.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// MinDuration is the shortest voice played, so very short notes stay audible.
const MinDuration = 50 * time.Millisecond

// fadeDuration is the attack and release of each voice.
const fadeDuration = 5 * time.Millisecond

// Player sounds notes. Implementations are runner sinks.
type Player interface {
	engine.Sink
	Play(n ir.PlayableNote)
	Close()
}

// New returns a speaker-backed player, or a Silent one when audio is
// disabled.
func New(cfg config.AudioConfig) (Player, error) {
	if !cfg.Enabled {
		return &Silent{}, nil
	}
	return NewSpeaker(cfg)
}

// NoteFreq returns the frequency of a MIDI pitch in Hz (A4 = 69 = 440Hz).
func NoteFreq(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// Level normalises a velocity to [0, 1]. Chart velocities are MIDI-scale
// (0..127); generated notes are already unit-scale.
func Level(velocity float64) float64 {
	if velocity > 1 {
		velocity /= 127
	}
	return min(max(velocity, 0), 1)
}

// NoteDuration is how long a note sounds.
func NoteDuration(n ir.PlayableNote) time.Duration {
	d := time.Duration(n.Duration() * float64(time.Second))
	return max(d, MinDuration)
}

// Voice is the timbre of an instrument: the relative amplitude of each
// harmonic, fundamental first.
type Voice struct {
	Name      string
	Harmonics []float64
}

// Sine is the voice for instruments without a recipe.
var Sine = Voice{Name: "sine", Harmonics: []float64{1}}

// voices is matched by name prefix, so "bass-electric" plays as bass.
var voices = []Voice{
	{Name: "piano", Harmonics: []float64{1, 0.5, 0.25, 0.12, 0.06}},
	{Name: "bass", Harmonics: []float64{1, 0.8, 0.3, 0.15}},
	{Name: "violin", Harmonics: []float64{1, 0.5, 0.33, 0.25, 0.2, 0.17}},
	{Name: "trumpet", Harmonics: []float64{1, 0.9, 0.7, 0.5, 0.35, 0.2}},
	{Name: "saxophone", Harmonics: []float64{1, 0.2, 0.7, 0.15, 0.4}},
	{Name: "trombone", Harmonics: []float64{1, 0.75, 0.5, 0.3}},
	{Name: "flute", Harmonics: []float64{1, 0.1, 0.05}},
}

// VoiceFor returns the voice for a chart instrument name, ignoring case.
func VoiceFor(instrument string) Voice {
	name := strings.ToLower(strings.TrimSpace(instrument))
	for _, v := range voices {
		if strings.HasPrefix(name, v.Name) {
			return v
		}
	}
	return Sine
}

// tone is an additive voice with a linear attack and release.
type tone struct {
	freq    float64
	amp     float64
	weights []float64
	rate    beep.SampleRate
	phase   float64
	pos     int
	total   int
	fade    int
}

// NewTone returns the voice for one note.
func NewTone(n ir.PlayableNote, rate beep.SampleRate) beep.Streamer {
	total := rate.N(NoteDuration(n))
	freq := NoteFreq(n.Pitch)
	return &tone{
		freq:    freq,
		amp:     Level(n.Velocity),
		weights: harmonicWeights(VoiceFor(n.Instrument), freq, rate),
		rate:    rate,
		total:   total,
		fade:    min(rate.N(fadeDuration), total/2),
	}
}

// harmonicWeights drops harmonics at or above Nyquist and scales the rest
// so the summed peak never exceeds one.
func harmonicWeights(v Voice, freq float64, rate beep.SampleRate) []float64 {
	nyquist := float64(rate) / 2
	weights := make([]float64, 0, len(v.Harmonics))
	var sum float64
	for k, a := range v.Harmonics {
		if k > 0 && float64(k+1)*freq >= nyquist {
			break
		}
		weights = append(weights, a)
		sum += a
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return weights
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			break
		}
		env := 1.0
		if t.fade > 0 {
			if t.pos < t.fade {
				env = float64(t.pos) / float64(t.fade)
			} else if rem := t.total - t.pos; rem < t.fade {
				env = float64(rem) / float64(t.fade)
			}
		}
		var wave float64
		for k, w := range t.weights {
			wave += w * math.Sin(2*math.Pi*float64(k+1)*t.phase)
		}
		v := t.amp * env * wave
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
		n++
	}
	return n, true
}

func (t *tone) Err() error { return nil }

// masterVolume scales the mix by gain. A gain of zero mutes.
func masterVolume(s beep.Streamer, gain float64) *effects.Volume {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain), Silent: false}
}

// Speaker plays voices through the system audio device.
type Speaker struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	output beep.Streamer
	closed bool
	device bool
}

// NewSpeaker opens the audio device at cfg.SampleRate.
func NewSpeaker(cfg config.AudioConfig) (*Speaker, error) {
	s := newSpeaker(beep.SampleRate(cfg.SampleRate), cfg.Gain)
	if err := speaker.Init(s.rate, s.rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s.output)
	s.device = true
	slog.Info("audio started", "sample_rate", cfg.SampleRate, "gain", cfg.Gain)
	return s, nil
}

// newSpeaker builds the mixer chain without opening a device.
func newSpeaker(rate beep.SampleRate, gain float64) *Speaker {
	mixer := &beep.Mixer{}
	return &Speaker{
		rate:   rate,
		mixer:  mixer,
		output: masterVolume(mixer, gain),
	}
}

// Play adds a voice for n to the mix.
func (s *Speaker) Play(n ir.PlayableNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	speaker.Lock()
	s.mixer.Add(NewTone(n, s.rate))
	speaker.Unlock()
}

// Consume plays every note the step asks to sound.
func (s *Speaker) Consume(_ context.Context, step engine.Step) error {
	for _, n := range step.State.NotesToSound {
		s.Play(n)
	}
	return nil
}

// Close silences the mix and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	if s.device {
		speaker.Close()
	}
}

// Silent discards notes, counting them. Used with --mute and in tests.
type Silent struct {
	mu     sync.Mutex
	played int
}

// Play counts n.
func (s *Silent) Play(ir.PlayableNote) {
	s.mu.Lock()
	s.played++
	s.mu.Unlock()
}

// Consume counts the step's notes.
func (s *Silent) Consume(_ context.Context, step engine.Step) error {
	for _, n := range step.State.NotesToSound {
		s.Play(n)
	}
	return nil
}

// Played returns how many notes have been discarded.
func (s *Silent) Played() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

// Close does nothing.
func (s *Silent) Close() {}
