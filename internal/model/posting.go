package model

import (
	"context"
	"time"
)

// Posting is the canonical representation of a job listing from any source.
type Posting struct {
	SourceName  string     // configured source name, e.g. "greenhouse:airbnb"
	ExternalID  string     // the source's own id, empty when the source has none
	Title       string     // trimmed, whitespace-collapsed
	Company     string     // trimmed, whitespace-collapsed
	Location    string     // trimmed, whitespace-collapsed
	URL         string     // canonical link, always absolute http(s)
	PublishedAt *time.Time // nullable (many sources omit it)
}

// RawItem is one listing in the source's native decoded shape.
type RawItem map[string]any

// Source kinds understood by the adapters and the normalizer.
const (
	KindGreenhouse      = "greenhouse"
	KindLever           = "lever"
	KindAshby           = "ashby"
	KindWorkday         = "workday"
	KindSmartRecruiters = "smartrecruiters"
	KindRSS             = "rss"
	KindJSON            = "json"
	KindHTML            = "html"
)

// Kinds lists every supported source kind.
var Kinds = []string{
	KindGreenhouse, KindLever, KindAshby, KindWorkday,
	KindSmartRecruiters, KindRSS, KindJSON, KindHTML,
}

// SourceDescriptor describes a single configured source.
type SourceDescriptor struct {
	Name        string            // unique, used as the identifier prefix
	Kind        string            // one of Kinds
	Endpoint    string            // board token, slug, or full URL depending on kind
	Company     string            // fallback company name when items carry none
	Credentials map[string]string // optional request headers (e.g. API keys)
	Fields      map[string]string // canonical field -> dotted path overrides
	ItemsPath   string            // json kind: dotted path to the item array
	Selector    string            // html kind: CSS selector for posting anchors
	Query       string            // workday/smartrecruiters: server-side search text
	Enabled     bool
}

// Fetcher reads the current listings of one source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]RawItem, error)
}

// Notifier sends notifications for new postings.
type Notifier interface {
	Notify(ctx context.Context, postings []Posting) error
}

// PostingFilter decides whether a posting is admitted into a cycle at all.
type PostingFilter interface {
	Match(p Posting) bool
}

// SeenStore is the persisted set of identifiers that have already been reported.
type SeenStore interface {
	Load(ctx context.Context) error
	Contains(id string) bool
	AddAll(ids []string, at time.Time)
	Persist(ctx context.Context) error
	Len() int
	Entries() map[string]time.Time
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
	Close() error
}
