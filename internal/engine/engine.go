// Package engine runs scan cycles: it fetches every configured source,
// normalizes and identifies what came back, diffs it against the seen-set,
// and records the new identifiers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/amishk599/jobradar/internal/identity"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/normalize"
)

const (
	defaultConcurrency   = 8
	defaultSourceTimeout = 12 * time.Second
)

// Source pairs a configured source with the adapter that reads it.
type Source struct {
	Descriptor model.SourceDescriptor
	Fetcher    model.Fetcher
}

// Config bounds the fetch phase of a cycle.
type Config struct {
	Concurrency   int           // max sources fetched at once
	SourceTimeout time.Duration // per-source fetch deadline
}

// Engine owns the seen-set for its lifetime. Cycles never overlap.
type Engine struct {
	sources     []Source
	store       model.SeenStore
	filter      model.PostingFilter
	notifier    model.Notifier
	normalizer  *normalize.Normalizer
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex // held for the whole of a cycle
	flight singleflight.Group
}

// New creates an engine over sources. filter and notifier may be nil.
func New(
	sources []Source,
	store model.SeenStore,
	filter model.PostingFilter,
	notifier model.Notifier,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	return &Engine{
		sources:     sources,
		store:       store,
		filter:      filter,
		notifier:    notifier,
		normalizer:  normalize.New(),
		concurrency: cfg.Concurrency,
		timeout:     cfg.SourceTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Sources returns the configured sources in cycle order.
func (e *Engine) Sources() []Source { return e.sources }

// LoadSeen loads the seen-set. A corrupt store is logged and treated as
// empty: startup is never blocked, at the cost of possibly re-reporting
// postings once.
func LoadSeen(ctx context.Context, store model.SeenStore, logger *slog.Logger) error {
	err := store.Load(ctx)
	if err == nil {
		logger.Info("seen store loaded", "entries", store.Len())
		return nil
	}
	var corrupt *model.StoreCorruptError
	if errors.As(err, &corrupt) {
		logger.Error("seen store unreadable, starting with an empty set; postings may be reported again",
			"path", corrupt.Path,
			"error", corrupt.Err,
		)
		return nil
	}
	return fmt.Errorf("loading seen store: %w", err)
}

// Scan runs one cycle and hands any new postings to the notifier.
// Concurrent callers share the in-flight scan and its result.
//
// Notification failures are returned but never undo the seen-set update: a
// posting is only reported again when it was never persisted as seen.
func (e *Engine) Scan(ctx context.Context) (*Result, error) {
	v, err, _ := e.flight.Do("scan", func() (any, error) {
		res, cycleErr := e.RunCycle(ctx)
		if res == nil || len(res.New) == 0 || e.notifier == nil {
			return res, cycleErr
		}
		if nerr := e.notifier.Notify(ctx, res.New); nerr != nil {
			e.logger.Error("notification failed", "cycle_id", res.CycleID, "new", len(res.New), "error", nerr)
			return res, errors.Join(cycleErr, fmt.Errorf("notifying: %w", nerr))
		}
		return res, cycleErr
	})
	res, _ := v.(*Result)
	return res, err
}

// RunCycle performs one scan cycle without notifying.
//
// The returned error is a context error when the cycle was cancelled before
// all sources were collected (the seen-set is untouched and the result nil),
// or a *model.PersistError when new identifiers could not be written. In the
// latter case the result is still returned in full.
func (e *Engine) RunCycle(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{
		CycleID: uuid.NewString(),
		Started: e.now(),
	}
	logger := e.logger.With("cycle_id", res.CycleID)
	logger.Info("scan started", "sources", len(e.sources))

	outcomes := e.fetchAll(ctx)

	// Barrier: nothing below runs until every source has been collected.
	if err := ctx.Err(); err != nil {
		logger.Warn("scan cancelled before completion", "error", err)
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	batch := make(map[string]struct{})
	for i, src := range e.sources {
		st := e.process(src, outcomes[i], batch, res, logger)
		res.Statuses = append(res.Statuses, st)
	}

	var persistErr error
	if len(res.IDs) > 0 {
		e.store.AddAll(res.IDs, res.Started)
		if err := e.store.Persist(context.WithoutCancel(ctx)); err != nil {
			persistErr = &model.PersistError{Pending: len(res.IDs), Err: err}
			logger.Error("failed to persist seen ids, postings will be reported again next scan",
				"pending", len(res.IDs),
				"error", err,
			)
		}
	}

	res.Duration = time.Since(res.Started)
	logger.Info("scan complete",
		"sources", len(e.sources),
		"failed", len(res.Failed()),
		"new", len(res.New),
		"seen_total", e.store.Len(),
		"duration", res.Duration.Round(time.Millisecond).String(),
	)
	return res, persistErr
}

// process normalizes, identifies, and partitions one source's items,
// appending its new postings to res in fetch order.
func (e *Engine) process(src Source, out fetchOutcome, batch map[string]struct{}, res *Result, logger *slog.Logger) SourceStatus {
	desc := src.Descriptor
	st := SourceStatus{Source: desc.Name, Kind: desc.Kind, Duration: out.duration}

	if out.err != nil {
		st.Err = &model.FetchError{Source: desc.Name, Err: out.err}
		logger.Warn("source fetch failed", "source", desc.Name, "kind", desc.Kind, "error", out.err)
		return st
	}

	st.Fetched = len(out.items)
	for _, item := range out.items {
		p, err := e.normalizer.Normalize(desc, item)
		if err != nil {
			st.Dropped++
			logger.Debug("dropping item", "source", desc.Name, "error", err)
			continue
		}
		st.Normalized++

		if e.filter != nil && !e.filter.Match(p) {
			st.Filtered++
			continue
		}

		id := identity.Resolve(p)
		if _, dup := batch[id]; dup {
			st.Duplicates++
			continue
		}
		batch[id] = struct{}{}

		if e.store.Contains(id) {
			continue
		}
		st.New++
		res.New = append(res.New, p)
		res.IDs = append(res.IDs, id)
		logger.Info("new posting", "source", desc.Name, "title", p.Title, "company", p.Company, "id", id)
	}

	logger.Debug("source scanned",
		"source", desc.Name,
		"kind", desc.Kind,
		"fetched", st.Fetched,
		"dropped", st.Dropped,
		"filtered", st.Filtered,
		"duplicates", st.Duplicates,
		"new", st.New,
		"duration", st.Duration.Round(time.Millisecond).String(),
	)
	return st
}
