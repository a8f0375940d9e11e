package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// RecordedEvent is one row of a session log.
type RecordedEvent struct {
	Seq   int64
	Event ir.Event
}

const sessionColumns = `id, song, config_hash, config, engine_version, event_version, final_fingerprint, steps, finished`

// ReadSession retrieves a session header by id.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// LatestSession returns the most recently created session.
func (s *Store) LatestSession(ctx context.Context) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("latest session: %w", ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("latest session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session in creation order.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadEvents returns a session's events ordered by seq.
// Returns an empty slice (not nil) for a session with no events.
func (s *Store) ReadEvents(ctx context.Context, sessionID string) ([]RecordedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, payload
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []RecordedEvent{}
	for rows.Next() {
		var (
			seq     int64
			kind    string
			payload string
		)
		if err := rows.Scan(&seq, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev, err := ir.UnmarshalEvent(ir.EventKind(kind), []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}
		events = append(events, RecordedEvent{Seq: seq, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountEvents returns how many events of each kind a session holds.
func (s *Store) CountEvents(ctx context.Context, sessionID string) (map[ir.EventKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM events
		WHERE session_id = ?
		GROUP BY kind
		ORDER BY kind COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.EventKind]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[ir.EventKind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess     Session
		config   string
		finished int
	)
	err := row.Scan(
		&sess.ID,
		&sess.Song,
		&sess.ConfigHash,
		&config,
		&sess.EngineVersion,
		&sess.EventVersion,
		&sess.FinalFingerprint,
		&sess.Steps,
		&finished,
	)
	if err != nil {
		return Session{}, err
	}
	sess.Config = []byte(config)
	sess.Finished = finished != 0
	return sess, nil
}
