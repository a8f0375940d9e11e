package store

import (
	"path/filepath"
	"testing"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// createTestStore creates a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession returns an unfinished session with the given id.
func createTestSession(id string) Session {
	return NewSession(NewFixedGenerator(id), "RockinRobin", []byte(`{"song":{"name":"RockinRobin"}}`), "test-hash")
}

func testNote(pitch int, player bool) ir.PlayableNote {
	return ir.PlayableNote{PlayerLane: player, Instrument: "Piano", Velocity: 0.7, Pitch: pitch, Start: 0.5, End: 0.75}
}
