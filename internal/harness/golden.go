package harness

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// FormatTrace renders a result as one line per step, for golden files
// and the trace command.
//
//	scenario: hit_window
//	001 key   red       | score=1 combo=1 mult=1.0 miss=0 falling=[] expired=[0] sound=[61]
//	final: score=1 combo=1 mult=1.0 miss=0 ended=false drained=false
func FormatTrace(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	for _, step := range result.Trace {
		buf.WriteString(FormatStep(step.Seq, step.Event, step.State))
		buf.WriteByte('\n')
	}
	s := result.Final
	fmt.Fprintf(&buf, "final: score=%d combo=%d mult=%.1f miss=%d ended=%t drained=%t\n",
		s.Score, s.Combo, s.Multiplier, s.MissCount, s.GameEnded, s.Drained())
	return []byte(buf.String())
}

// FormatStep renders one applied event and the state it produced.
func FormatStep(seq int64, ev ir.Event, s ir.State) string {
	falling := make([]string, len(s.FallingNotes))
	for i, n := range s.FallingNotes {
		falling[i] = fmt.Sprintf("%d:%s@%s", n.ID, n.Lane, strconv.FormatFloat(n.Position, 'f', -1, 64))
	}
	expired := make([]string, len(s.ExpiredNotes))
	for i, n := range s.ExpiredNotes {
		expired[i] = strconv.FormatInt(n.ID, 10)
	}
	sound := make([]string, len(s.NotesToSound))
	for i, n := range s.NotesToSound {
		sound[i] = strconv.Itoa(n.Pitch)
	}

	return fmt.Sprintf("%03d %-5s %-9s | score=%d combo=%d mult=%.1f miss=%d falling=[%s] expired=[%s] sound=[%s]",
		seq, kindOf(ev), eventDetail(ev),
		s.Score, s.Combo, s.Multiplier, s.MissCount,
		strings.Join(falling, " "), strings.Join(expired, " "), strings.Join(sound, " "))
}

func kindOf(ev ir.Event) string {
	if ev == nil {
		return "nil"
	}
	return string(ev.Kind())
}

func eventDetail(ev ir.Event) string {
	switch e := ev.(type) {
	case ir.Tick:
		return "t=" + strconv.FormatInt(e.Time, 10)
	case ir.SpawnNote:
		if e.Note.PlayerLane {
			return fmt.Sprintf("p=%d/play", e.Note.Pitch)
		}
		return fmt.Sprintf("p=%d/bg", e.Note.Pitch)
	case ir.KeyPress:
		return e.Lane.String()
	default:
		return "-"
	}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, FormatTrace(scenarioName, result))
}
