package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure SQLiteStore implements model.SeenStore.
var _ model.SeenStore = (*SQLiteStore)(nil)

// timeLayout is fixed-width so that string comparison in SQL orders correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore tracks seen identifiers in a SQLite database. Persist inserts
// the pending additions in a single transaction.
type SQLiteStore struct {
	db   *sql.DB
	path string
	set  *Set
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath. The schema
// is created by Load.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath, set: NewSet()}, nil
}

// Load ensures the seen_postings table exists and reads every row into memory.
// Any failure is reported as a *model.StoreCorruptError.
func (s *SQLiteStore) Load(ctx context.Context) error {
	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		id         TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return &model.StoreCorruptError{Path: s.path, Err: fmt.Errorf("creating seen_postings table: %w", err)}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, first_seen FROM seen_postings")
	if err != nil {
		return &model.StoreCorruptError{Path: s.path, Err: err}
	}
	defer rows.Close()

	entries := make(map[string]time.Time)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return &model.StoreCorruptError{Path: s.path, Err: err}
		}
		at, err := time.Parse(timeLayout, raw)
		if err != nil {
			return &model.StoreCorruptError{Path: s.path, Err: fmt.Errorf("first_seen for %s: %w", id, err)}
		}
		entries[id] = at
	}
	if err := rows.Err(); err != nil {
		return &model.StoreCorruptError{Path: s.path, Err: err}
	}

	s.set.Replace(entries)
	return nil
}

// Contains returns true if the given identifier has already been recorded.
func (s *SQLiteStore) Contains(id string) bool { return s.set.Contains(id) }

// AddAll records identifiers in memory. If one already exists the call is a no-op for it.
func (s *SQLiteStore) AddAll(ids []string, at time.Time) { s.set.AddAll(ids, at) }

// Len returns the number of recorded identifiers.
func (s *SQLiteStore) Len() int { return s.set.Len() }

// Entries returns a copy of every identifier with its first-seen time.
func (s *SQLiteStore) Entries() map[string]time.Time { return s.set.Entries() }

// Persist writes pending additions in one transaction. On failure nothing is
// written and the pending additions are rolled back in memory as well.
func (s *SQLiteStore) Persist(ctx context.Context) error {
	pending := s.set.Pending()
	if len(pending) == 0 {
		return nil
	}
	if err := s.insert(ctx, pending); err != nil {
		s.set.Rollback(pending)
		return err
	}
	s.set.Commit(pending)
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, pending map[string]time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seen transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO seen_postings (id, first_seen) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing seen insert: %w", err)
	}
	defer stmt.Close()

	for id, at := range pending {
		if _, err := stmt.ExecContext(ctx, id, at.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("marking %s as seen: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seen transaction: %w", err)
	}
	return nil
}

// Prune deletes entries first seen more than olderThan ago.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, "DELETE FROM seen_postings WHERE first_seen < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning seen entries older than %v: %w", olderThan, err)
	}
	s.set.RemoveOlderThan(cutoff)

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning seen entries: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
