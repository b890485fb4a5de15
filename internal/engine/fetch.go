package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobradar/internal/model"
)

type fetchOutcome struct {
	items    []model.RawItem
	err      error
	duration time.Duration
}

// fetchAll fetches every source with at most e.concurrency in flight and
// waits for all of them. Outcomes are indexed like e.sources. Once ctx is
// cancelled no further fetches are started.
func (e *Engine) fetchAll(ctx context.Context) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(e.sources))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, src := range e.sources {
		if err := ctx.Err(); err != nil {
			outcomes[i] = fetchOutcome{err: err}
			continue
		}
		g.Go(func() error {
			start := time.Now()
			items, err := e.fetchOne(ctx, src)
			outcomes[i] = fetchOutcome{items: items, err: err, duration: time.Since(start)}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// fetchOne runs a single adapter under the per-source timeout. An adapter
// that ignores its context is abandoned when the deadline passes, and a
// panicking adapter is reported as a fetch error.
func (e *Engine) fetchOne(ctx context.Context, src Source) ([]model.RawItem, error) {
	fctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		items []model.RawItem
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		items, err := src.Fetcher.Fetch(fctx)
		done <- result{items: items, err: err}
	}()

	select {
	case r := <-done:
		return r.items, r.err
	case <-fctx.Done():
		if errors.Is(fctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("fetch timed out after %v: %w", e.timeout, fctx.Err())
		}
		return nil, fctx.Err()
	}
}
