package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/store"
)

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeFile writes content to name inside a fresh temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// shortGame spawns one red note, ticks it down to the hit line, hits it,
// and ends the song.
func shortGame() []ir.Event {
	events := []ir.Event{
		ir.SpawnNote{Note: ir.PlayableNote{PlayerLane: true, Instrument: "Piano", Velocity: 0.7, Pitch: 61, Start: 0, End: 0.25}},
	}
	for i := int64(1); i <= 175; i++ {
		events = append(events, ir.Tick{Time: i})
	}
	return append(events, ir.KeyPress{Lane: ir.LaneRed}, ir.End{})
}

// recordGame records events as session id into a new database at dbPath,
// using the default configuration.
func recordGame(t *testing.T, dbPath, id string, events []ir.Event) ir.State {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	cfg := config.Default()
	sess, err := newRecordedSession(ctx, st, store.NewFixedGenerator(id), cfg)
	require.NoError(t, err)

	rec := store.NewRecorder(st, sess.ID)
	runner := engine.NewRunner(engine.NewRules(cfg), engine.WithSinks(rec))
	for _, ev := range events {
		require.True(t, runner.Enqueue(ev))
	}
	runner.Stop()
	require.NoError(t, runner.Run(ctx))
	require.NoError(t, rec.Finish(ctx))
	return runner.State()
}
