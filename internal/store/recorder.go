package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/engine"
	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Recorder is a runner sink that appends every applied event to a session.
type Recorder struct {
	store     *Store
	sessionID string

	mu    sync.Mutex
	last  ir.State
	steps int64
}

var _ engine.Sink = (*Recorder)(nil)

// NewRecorder records into an existing session.
func NewRecorder(st *Store, sessionID string) *Recorder {
	return &Recorder{store: st, sessionID: sessionID, last: ir.InitialState()}
}

// Consume appends the step's event.
func (r *Recorder) Consume(ctx context.Context, step engine.Step) error {
	if err := r.store.AppendEvent(ctx, r.sessionID, step.Seq, step.Event); err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	r.mu.Lock()
	r.last = step.State
	r.steps = step.Seq
	r.mu.Unlock()
	return nil
}

// Finish stores the fingerprint of the last recorded state.
// Call it after the runner has returned.
func (r *Recorder) Finish(ctx context.Context) error {
	r.mu.Lock()
	fp := ir.StateFingerprint(r.last)
	steps := r.steps
	r.mu.Unlock()

	return r.store.FinishSession(ctx, r.sessionID, fp, steps)
}
