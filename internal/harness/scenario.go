package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Scenario defines a conformance test scenario: a starting state, a list
// of events, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides the default rules for this scenario.
	Config *RuleOverrides `yaml:"config,omitempty"`

	// Initial seeds the state. Omitted means ir.InitialState().
	Initial *InitialState `yaml:"initial,omitempty"`

	// Events are applied in order.
	Events []EventStep `yaml:"events"`

	// Expect is checked against the final state. Only fields that are set
	// are compared.
	Expect Expectation `yaml:"expect"`
}

// RuleOverrides replaces individual fields of the default rules.
type RuleOverrides struct {
	TrackLength *float64 `yaml:"track_length,omitempty"`
	HitLine     *float64 `yaml:"hit_line,omitempty"`
	HitRadius   *float64 `yaml:"hit_radius,omitempty"`
	Step        *float64 `yaml:"step,omitempty"`
	MissPenalty *int64   `yaml:"miss_penalty,omitempty"`
	Substitute  *bool    `yaml:"substitute,omitempty"`
}

// InitialState seeds the state before the first event.
// Falling notes get ids 0..n-1 in the order listed.
type InitialState struct {
	Score     int64       `yaml:"score"`
	Combo     int         `yaml:"combo"`
	MissCount int         `yaml:"miss_count"`
	Clock     int64       `yaml:"clock"`
	Ended     bool        `yaml:"ended"`
	Falling   []NoteSetup `yaml:"falling"`
}

// NoteSetup places one falling note on the track.
type NoteSetup struct {
	Lane     string  `yaml:"lane"`
	Position float64 `yaml:"position"`
	Pitch    int     `yaml:"pitch"`
}

// EventStep is one entry of the events list. Exactly one field is set.
//
//	events:
//	  - tick: 5          # Tick{Time: 5}
//	  - ticks: 100       # 100 ticks continuing from the last tick time
//	  - spawn: {pitch: 61, player: true}
//	  - key: red
//	  - end: true
type EventStep struct {
	Tick  *int64     `yaml:"tick,omitempty"`
	Ticks int        `yaml:"ticks,omitempty"`
	Spawn *SpawnStep `yaml:"spawn,omitempty"`
	Key   string     `yaml:"key,omitempty"`
	End   bool       `yaml:"end,omitempty"`
}

// SpawnStep describes the note a SpawnNote event carries.
type SpawnStep struct {
	Player     bool    `yaml:"player"`
	Instrument string  `yaml:"instrument,omitempty"`
	Velocity   float64 `yaml:"velocity,omitempty"`
	Pitch      int     `yaml:"pitch"`
	Start      float64 `yaml:"start,omitempty"`
	End        float64 `yaml:"end,omitempty"`
}

// Expectation holds the subset of final-state fields to verify.
type Expectation struct {
	Score        *int64    `yaml:"score,omitempty"`
	Combo        *int      `yaml:"combo,omitempty"`
	Multiplier   *float64  `yaml:"multiplier,omitempty"`
	MissCount    *int      `yaml:"miss_count,omitempty"`
	Ended        *bool     `yaml:"ended,omitempty"`
	Drained      *bool     `yaml:"drained,omitempty"`
	SpawnCounter *int64    `yaml:"spawn_counter,omitempty"`
	FallingCount *int      `yaml:"falling_count,omitempty"`
	FallingIDs   []int64   `yaml:"falling_ids,omitempty"`
	Positions    []float64 `yaml:"positions,omitempty"`
	ExpiredIDs   []int64   `yaml:"expired_ids,omitempty"`
	SoundCount   *int      `yaml:"sound_count,omitempty"`

	// Substitute expects the last step to have sounded exactly one
	// generated miss note.
	Substitute *bool `yaml:"substitute,omitempty"`
}

// empty reports whether no expectation is set.
func (e Expectation) empty() bool {
	return e.Score == nil && e.Combo == nil && e.Multiplier == nil &&
		e.MissCount == nil && e.Ended == nil && e.Drained == nil &&
		e.SpawnCounter == nil && e.FallingCount == nil && e.FallingIDs == nil &&
		e.Positions == nil && e.ExpiredIDs == nil && e.SoundCount == nil &&
		e.Substitute == nil
}

// ParseLane resolves a lane by colour name ("green") or index ("0").
func ParseLane(name string) (ir.Lane, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range ir.Lanes {
		if l.String() == name {
			return l, nil
		}
	}
	if len(name) == 1 && name[0] >= '0' && name[0] < '0'+ir.LaneCount {
		return ir.Lane(name[0] - '0'), nil
	}
	return 0, fmt.Errorf("unknown lane %q", name)
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
// A non-empty filter keeps only scenarios whose name contains it.
func LoadDir(dir, filter string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if filter != "" && !strings.Contains(s.Name, filter) {
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if s.Expect.empty() {
		return fmt.Errorf("expect must set at least one field")
	}

	if s.Initial != nil {
		for i, n := range s.Initial.Falling {
			if _, err := ParseLane(n.Lane); err != nil {
				return fmt.Errorf("initial.falling[%d]: %w", i, err)
			}
		}
	}

	for i, step := range s.Events {
		if err := validateEventStep(i, step); err != nil {
			return err
		}
	}

	return nil
}

// validateEventStep requires exactly one event field per step.
func validateEventStep(index int, e EventStep) error {
	set := 0
	if e.Tick != nil {
		set++
	}
	if e.Ticks != 0 {
		if e.Ticks < 0 {
			return fmt.Errorf("events[%d]: ticks must be positive", index)
		}
		set++
	}
	if e.Spawn != nil {
		set++
	}
	if e.Key != "" {
		if _, err := ParseLane(e.Key); err != nil {
			return fmt.Errorf("events[%d]: %w", index, err)
		}
		set++
	}
	if e.End {
		set++
	}

	if set != 1 {
		return fmt.Errorf("events[%d]: exactly one of tick, ticks, spawn, key, end is required", index)
	}
	return nil
}
