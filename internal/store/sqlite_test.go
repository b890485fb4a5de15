package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T, dbPath string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestSQLite_AddAllThenContains(t *testing.T) {
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "test.db"))

	s.AddAll([]string{"greenhouse:acme:123"}, time.Now())

	if !s.Contains("greenhouse:acme:123") {
		t.Error("expected Contains to return true after AddAll")
	}
	if s.Contains("does-not-exist") {
		t.Error("expected Contains to return false for unknown id")
	}
}

func TestSQLite_PersistSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := first.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	seenAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first.AddAll([]string{"a", "b"}, seenAt)
	if err := first.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	first.Close()

	second := newTestSQLiteStore(t, dbPath)
	if second.Len() != 2 {
		t.Fatalf("Len after reopen = %d, want 2", second.Len())
	}
	if got := second.Entries()["a"]; !got.Equal(seenAt) {
		t.Errorf("first_seen = %v, want %v", got, seenAt)
	}
}

func TestSQLite_AddAllIdempotentKeepsFirstSeen(t *testing.T) {
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.AddAll([]string{"job-456"}, early)
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	s.AddAll([]string{"job-456"}, early.Add(time.Hour))
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if got := s.Entries()["job-456"]; !got.Equal(early) {
		t.Errorf("first_seen = %v, want %v", got, early)
	}
}

func TestSQLite_PruneRemovesOldKeepsFresh(t *testing.T) {
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	s.AddAll([]string{"old-job"}, time.Now().Add(-48*time.Hour))
	s.AddAll([]string{"fresh-job"}, time.Now())
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	removed, err := s.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if s.Contains("old-job") {
		t.Error("expected old job to be pruned")
	}
	if !s.Contains("fresh-job") {
		t.Error("expected fresh job to survive prune")
	}
}

func TestSQLite_PersistFailureRollsBack(t *testing.T) {
	s := newTestSQLiteStore(t, filepath.Join(t.TempDir(), "test.db"))

	s.AddAll([]string{"x"}, time.Now())
	s.db.Close()

	if err := s.Persist(context.Background()); err == nil {
		t.Fatal("expected Persist to fail on a closed database")
	}
	if s.Contains("x") {
		t.Error("failed persist must roll back so the id is reported again")
	}
}
