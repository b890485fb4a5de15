package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure FileStore implements model.SeenStore.
var _ model.SeenStore = (*FileStore)(nil)

// fileEntry is one line of the seen file.
type fileEntry struct {
	ID        string    `json:"id"`
	FirstSeen time.Time `json:"first_seen"`
}

// FileStore keeps the seen-set in a line-delimited JSON file. Every persist
// rewrites the file through a temp file and rename, so a crash mid-write
// leaves the previous version intact. A sibling lock file is held for the
// store's lifetime so two processes never own the same seen-set.
type FileStore struct {
	path     string
	lock     *flock.Flock // nil for read-only stores
	set      *Set
	readOnly bool

	// blocked is set when Load could neither read the seen file nor move it
	// aside. Writes are refused so the unread history is never replaced.
	blocked error
}

// ErrReadOnly is returned by writes to a store opened with OpenFileReadOnly.
var ErrReadOnly = errors.New("seen store opened read-only")

// NewFileStore opens the seen file at path, creating its directory if needed,
// and takes the exclusive lock. The file itself is read by Load.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking seen store %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("seen store %s is in use by another process", path)
	}

	return &FileStore{path: path, lock: lock, set: NewSet()}, nil
}

// OpenFileReadOnly opens the seen file for inspection. It takes no lock, so it
// works while a daemon owns the store, and Load never moves a bad file aside.
// Persist and Prune return ErrReadOnly.
func OpenFileReadOnly(path string) *FileStore {
	return &FileStore{path: path, set: NewSet(), readOnly: true}
}

// Path returns the location of the seen file.
func (s *FileStore) Path() string { return s.path }

// Load reads the seen file. A missing file is an empty set. A file that
// cannot be read or decoded is moved aside to path.corrupt-<unix> and reported
// as a *model.StoreCorruptError; the in-memory set is left empty. When the
// move fails, later writes are refused.
func (s *FileStore) Load(_ context.Context) error {
	s.set.Replace(make(map[string]time.Time))
	s.blocked = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		var entries map[string]time.Time
		if entries, err = decodeSeenFile(data, s.fileModTime()); err == nil {
			s.set.Replace(entries)
			return nil
		}
	}
	return &model.StoreCorruptError{Path: s.path, Err: s.moveAside(err)}
}

// moveAside renames the unusable seen file out of the way so the next
// persist starts a fresh file without destroying the old one.
func (s *FileStore) moveAside(cause error) error {
	if s.readOnly {
		return cause
	}
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, aside); err != nil {
		s.blocked = fmt.Errorf("seen file %s could not be read or moved aside: %w", s.path, errors.Join(cause, err))
		return s.blocked
	}
	return fmt.Errorf("%w (moved to %s)", cause, aside)
}

// writable reports why the file must not be rewritten, if it must not.
func (s *FileStore) writable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return s.blocked
}

func (s *FileStore) fileModTime() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Now().UTC()
	}
	return info.ModTime().UTC()
}

// decodeSeenFile parses line-delimited entries. A file holding a single JSON
// array of ids is accepted too; those ids get fallback as first-seen time.
func decodeSeenFile(data []byte, fallback time.Time) (map[string]time.Time, error) {
	entries := make(map[string]time.Time)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return entries, nil
	}
	if trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, fmt.Errorf("decoding id list: %w", err)
		}
		for _, id := range ids {
			entries[id] = fallback
		}
		return entries, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e fileEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("line %d: missing id", line)
		}
		if prev, ok := entries[e.ID]; !ok || e.FirstSeen.Before(prev) {
			entries[e.ID] = e.FirstSeen.UTC()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	return entries, nil
}

// Contains returns true if the identifier has already been recorded.
func (s *FileStore) Contains(id string) bool { return s.set.Contains(id) }

// AddAll records identifiers in memory; Persist makes them durable.
func (s *FileStore) AddAll(ids []string, at time.Time) { s.set.AddAll(ids, at) }

// Len returns the number of recorded identifiers.
func (s *FileStore) Len() int { return s.set.Len() }

// Entries returns a copy of every identifier with its first-seen time.
func (s *FileStore) Entries() map[string]time.Time { return s.set.Entries() }

// Persist atomically rewrites the seen file when there are pending additions.
// On failure the pending additions are rolled back.
func (s *FileStore) Persist(_ context.Context) error {
	pending := s.set.Pending()
	if len(pending) == 0 {
		return nil
	}
	if err := s.writable(); err != nil {
		s.set.Rollback(pending)
		return err
	}
	if err := s.writeFile(s.set.Entries()); err != nil {
		s.set.Rollback(pending)
		return err
	}
	s.set.Commit(pending)
	return nil
}

// Prune removes entries first seen more than olderThan ago and rewrites the file.
func (s *FileStore) Prune(_ context.Context, olderThan time.Duration) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	removed := s.set.RemoveOlderThan(time.Now().Add(-olderThan))
	if removed == 0 {
		return 0, nil
	}
	if err := s.writeFile(s.set.Entries()); err != nil {
		return 0, fmt.Errorf("pruning seen entries older than %v: %w", olderThan, err)
	}
	s.set.Commit(s.set.Pending())
	return removed, nil
}

// writeFile writes entries ordered by first-seen time then id, so the file
// reads chronologically.
func (s *FileStore) writeFile(entries map[string]time.Time) (err error) {
	list := make([]fileEntry, 0, len(entries))
	for id, at := range entries {
		list = append(list, fileEntry{ID: id, FirstSeen: at})
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].FirstSeen.Equal(list[j].FirstSeen) {
			return list[i].FirstSeen.Before(list[j].FirstSeen)
		}
		return list[i].ID < list[j].ID
	})

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp seen file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, e := range list {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding seen entry %s: %w", e.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing temp seen file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp seen file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp seen file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing seen file: %w", err)
	}
	return nil
}

// Close releases the store lock.
func (s *FileStore) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}
