// Package browse is an interactive terminal view of what one source currently
// lists and which of those postings have already been reported.
package browse

import (
	"context"
	"sort"
	"time"

	"github.com/amishk599/jobradar/internal/identity"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/normalize"
)

// Entry is one normalized posting with its seen state.
type Entry struct {
	Posting   model.Posting
	ID        string
	FirstSeen *time.Time // nil if never reported
	Filtered  bool       // rejected by the keyword filter
}

// IsNew reports whether the next scan would report this posting.
func (e Entry) IsNew() bool {
	return e.FirstSeen == nil && !e.Filtered
}

// Snapshot is the browsable state of a single source.
type Snapshot struct {
	Source  model.SourceDescriptor
	Entries []Entry
	Dropped int // items that failed normalization
}

// New returns the entries the next scan would report.
func (s Snapshot) New() []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.IsNew() {
			out = append(out, e)
		}
	}
	return out
}

// Collect fetches src and classifies what came back against seen. It never
// modifies seen. filter may be nil.
func Collect(ctx context.Context, src model.SourceDescriptor, f model.Fetcher, seen model.SeenStore, filter model.PostingFilter) (Snapshot, error) {
	items, err := f.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Source: src}
	entries := seen.Entries()
	norm := normalize.New()
	dup := make(map[string]bool)

	for _, item := range items {
		p, err := norm.Normalize(src, item)
		if err != nil {
			snap.Dropped++
			continue
		}
		id := identity.Resolve(p)
		if dup[id] {
			continue
		}
		dup[id] = true

		e := Entry{Posting: p, ID: id, Filtered: filter != nil && !filter.Match(p)}
		if at, ok := entries[id]; ok {
			at := at
			e.FirstSeen = &at
		}
		snap.Entries = append(snap.Entries, e)
	}

	sortByDate(snap.Entries)
	return snap, nil
}

// sortByDate orders entries newest first; undated entries go last.
func sortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Posting.PublishedAt, entries[j].Posting.PublishedAt
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
}
