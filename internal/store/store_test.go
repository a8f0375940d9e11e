package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		var count int
		if err := s.DB().QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	checks := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
		"user_version": "1",
	}
	for name, want := range checks {
		if err := s.verifyPragma(ctx, name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_MigrationIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.DB().QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_events_session_kind'
	`).Scan(&name)
	if err != nil {
		t.Fatalf("index missing: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing-dir", "sub", "test.db"))
	if err == nil {
		t.Fatal("expected error for unreachable path")
	}
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store: %v", err)
	}
}
