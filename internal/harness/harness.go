package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Run executes a scenario through the real runner and returns its trace.
//
// Every step is checked against the game invariants, then the final
// state is compared with the scenario's expectations. Failures are
// reported in Result.Errors; the returned error is reserved for
// scenarios that cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	rules := buildRules(scenario.Config)
	initial, err := buildInitial(scenario.Initial)
	if err != nil {
		return nil, err
	}
	events, err := buildEvents(scenario.Events, initial.ClockTime)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	sink := engine.SinkFunc(func(_ context.Context, step engine.Step) error {
		result.Trace = append(result.Trace, TraceStep{Seq: step.Seq, Event: step.Event, State: step.State})
		return nil
	})

	runner := engine.NewRunner(rules,
		engine.WithInitialState(initial),
		engine.WithSinks(sink),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	for i, ev := range events {
		if !runner.Enqueue(ev) {
			return nil, fmt.Errorf("event %d rejected by runner", i)
		}
	}
	runner.Stop()
	if err := runner.Run(context.Background()); err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, err)
	}

	result.Final = runner.State()
	result.Fingerprint = ir.StateFingerprint(result.Final)

	prev := initial
	for _, step := range result.Trace {
		for _, msg := range CheckInvariants(rules, prev, step.Event, step.State) {
			result.AddError(fmt.Sprintf("seq %d (%s): %s", step.Seq, step.Event.Kind(), msg))
		}
		prev = step.State
	}
	for _, msg := range EvaluateExpectations(result.Final, scenario.Expect) {
		result.AddError(msg)
	}

	return result, nil
}

// buildRules applies scenario overrides to the default rules.
func buildRules(o *RuleOverrides) engine.Rules {
	rules := engine.DefaultRules()
	if o == nil {
		return rules
	}
	if o.TrackLength != nil {
		rules.Geometry.TrackLength = *o.TrackLength
	}
	if o.HitLine != nil {
		rules.Geometry.HitLine = *o.HitLine
	}
	if o.HitRadius != nil {
		rules.Geometry.HitRadius = *o.HitRadius
	}
	if o.Step != nil {
		rules.Geometry.Step = *o.Step
	}
	if o.MissPenalty != nil {
		rules.Miss.Penalty = *o.MissPenalty
	}
	if o.Substitute != nil {
		rules.Miss.Substitute = *o.Substitute
	}
	return rules
}

// buildInitial turns the scenario's initial block into a state.
// The multiplier always follows the seeded combo.
func buildInitial(init *InitialState) (ir.State, error) {
	s := ir.InitialState()
	if init == nil {
		return s, nil
	}

	s.Score = init.Score
	s.Combo = init.Combo
	s.Multiplier = engine.Multiplier(init.Combo)
	s.MissCount = init.MissCount
	s.ClockTime = init.Clock
	s.GameEnded = init.Ended

	for i, n := range init.Falling {
		lane, err := ParseLane(n.Lane)
		if err != nil {
			return ir.State{}, fmt.Errorf("initial.falling[%d]: %w", i, err)
		}
		pitch := n.Pitch
		if pitch == 0 {
			pitch = pitchForLane(lane)
		}
		s.FallingNotes = append(s.FallingNotes, ir.FallingNote{
			ID:       int64(i),
			Lane:     lane,
			Position: n.Position,
			Source: ir.PlayableNote{
				PlayerLane: true,
				Instrument: config.Default().Song.Name,
				Velocity:   1,
				Pitch:      pitch,
			},
		})
	}
	s.SpawnCounter = int64(len(init.Falling))
	return s, nil
}

// pitchForLane returns a pitch around middle C that maps onto lane.
func pitchForLane(l ir.Lane) int {
	return 60 + int(l)
}

// buildEvents expands scenario steps into reducer events. Tick times
// continue from the last tick seen, starting after clock.
func buildEvents(steps []EventStep, clock int64) ([]ir.Event, error) {
	events := make([]ir.Event, 0, len(steps))
	last := clock
	for i, step := range steps {
		switch {
		case step.Tick != nil:
			last = *step.Tick
			events = append(events, ir.Tick{Time: last})
		case step.Ticks > 0:
			for i := 0; i < step.Ticks; i++ {
				last++
				events = append(events, ir.Tick{Time: last})
			}
		case step.Spawn != nil:
			events = append(events, ir.SpawnNote{Note: spawnNote(*step.Spawn)})
		case step.Key != "":
			lane, err := ParseLane(step.Key)
			if err != nil {
				return nil, fmt.Errorf("events[%d]: %w", i, err)
			}
			events = append(events, ir.KeyPress{Lane: lane})
		case step.End:
			events = append(events, ir.End{})
		default:
			return nil, fmt.Errorf("events[%d]: empty step", i)
		}
	}
	return events, nil
}

func spawnNote(s SpawnStep) ir.PlayableNote {
	n := ir.PlayableNote{
		PlayerLane: s.Player,
		Instrument: s.Instrument,
		Velocity:   s.Velocity,
		Pitch:      s.Pitch,
		Start:      s.Start,
		End:        s.End,
	}
	if n.Instrument == "" {
		n.Instrument = "piano"
	}
	if n.Velocity == 0 {
		n.Velocity = 1
	}
	return n
}
