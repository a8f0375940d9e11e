package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// ReplayResult reports whether a recorded session refolds deterministically.
type ReplayResult struct {
	SessionID   string `json:"session_id"`
	Events      int    `json:"events"`
	Fingerprint string `json:"fingerprint"`
	Recorded    string `json:"recorded,omitempty"`
	// Deterministic is true when two independent refolds agree.
	Deterministic bool `json:"deterministic"`
	// Matches is true when the refold agrees with the recorded fingerprint.
	// An unfinished session has nothing to compare and always matches.
	Matches bool     `json:"matches"`
	Final   ir.State `json:"-"`
}

// OK reports whether the replay found no discrepancy.
func (r ReplayResult) OK() bool {
	return r.Deterministic && r.Matches
}

// Replay refolds a session's events twice from the initial state and
// compares the fingerprints with each other and with the recorded one.
//
// The same code path applies every event during play and during replay:
// engine.Apply is the only place state changes.
func Replay(ctx context.Context, st *Store, id string, rules engine.Rules) (ReplayResult, error) {
	sess, err := st.ReadSession(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	if sess.EngineVersion != ir.EngineVersion {
		slog.Warn("replaying session recorded by a different engine version",
			"session", id,
			"recorded", sess.EngineVersion,
			"current", ir.EngineVersion,
		)
	}

	recorded, err := st.ReadEvents(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	events := make([]ir.Event, len(recorded))
	for i, re := range recorded {
		events[i] = re.Event
	}

	first := engine.Fold(rules, ir.InitialState(), events)
	second := engine.Fold(rules, ir.InitialState(), events)

	result := ReplayResult{
		SessionID:   id,
		Events:      len(events),
		Fingerprint: ir.StateFingerprint(first),
		Recorded:    sess.FinalFingerprint,
		Final:       first,
	}
	result.Deterministic = result.Fingerprint == ir.StateFingerprint(second)
	result.Matches = !sess.Finished || result.Fingerprint == sess.FinalFingerprint

	slog.Info("session replayed",
		"session", id,
		"events", result.Events,
		"deterministic", result.Deterministic,
		"matches", result.Matches,
	)
	return result, nil
}
