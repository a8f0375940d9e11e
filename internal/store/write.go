package store

import (
	"context"
	"fmt"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// CreateSession inserts a session header.
// Uses ON CONFLICT(id) DO NOTHING so a retried create is harmless.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	config := sess.Config
	if config == nil {
		config = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, song, config_hash, config, engine_version, event_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Song,
		sess.ConfigHash,
		string(config),
		sess.EngineVersion,
		sess.EventVersion,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// AppendEvent records the event applied at seq.
// Duplicate (session, seq) pairs are ignored; the session must exist.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, seq int64, ev ir.Event) error {
	kind, payload, err := ir.MarshalEvent(ev)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		seq,
		string(kind),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("append event %d: %w", seq, err)
	}
	return nil
}

// FinishSession stores the final fingerprint and step count.
func (s *Store) FinishSession(ctx context.Context, id, fingerprint string, steps int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET final_fingerprint = ?, steps = ?, finished = 1
		WHERE id = ?
	`, fingerprint, steps, id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}
