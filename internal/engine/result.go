package engine

import (
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// SourceStatus summarizes what happened to one source during a cycle.
type SourceStatus struct {
	Source     string
	Kind       string
	Fetched    int // raw items returned by the adapter
	Normalized int // items that became postings
	Dropped    int // items that failed normalization
	Filtered   int // postings rejected by the admission filter
	Duplicates int // repeated identifiers within this cycle
	New        int // postings never reported before
	Err        error
	Duration   time.Duration
}

// OK reports whether the source was fetched successfully.
func (s SourceStatus) OK() bool { return s.Err == nil }

// Result is the outcome of one scan cycle. New is ordered by source (in
// configuration order) and then by the order the adapter returned items.
type Result struct {
	CycleID  string
	Started  time.Time
	Duration time.Duration
	New      []model.Posting
	IDs      []string // identifiers, parallel to New
	Statuses []SourceStatus
}

// Failed returns the statuses of sources that could not be fetched.
func (r *Result) Failed() []SourceStatus {
	var failed []SourceStatus
	for _, st := range r.Statuses {
		if !st.OK() {
			failed = append(failed, st)
		}
	}
	return failed
}

// Status returns the status recorded for the named source.
func (r *Result) Status(source string) (SourceStatus, bool) {
	for _, st := range r.Statuses {
		if st.Source == source {
			return st, true
		}
	}
	return SourceStatus{}, false
}
