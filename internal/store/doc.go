// Package store records play sessions in SQLite.
//
// A session is the ordered list of events the runner applied, plus the
// fingerprint of the state they produced. Scores are not stored: replaying
// the events through the reducer reproduces them, and comparing fingerprints
// proves the reducer is deterministic.
//
// # Ordering
//
// Events are keyed by (session_id, seq) where seq is the runner's logical
// step counter. Every read orders by seq ASC; sessions list by id, which
// is a UUIDv7 and therefore creation-ordered.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
