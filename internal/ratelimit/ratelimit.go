// Package ratelimit throttles requests per backend so sources that share a
// host (every Greenhouse board, say) do not hammer it together.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobradar/internal/model"
)

// Limits configures a KindLimiter. A zero PerSecond means unlimited.
type Limits struct {
	PerSecond float64
	Burst     int
}

// KindLimiter hands out one token bucket per source kind.
type KindLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	def       Limits
	overrides map[string]Limits
}

// NewKindLimiter creates a limiter with def applied to every kind that has no
// entry in overrides.
func NewKindLimiter(def Limits, overrides map[string]Limits) *KindLimiter {
	return &KindLimiter{
		limiters:  make(map[string]*rate.Limiter),
		def:       def,
		overrides: overrides,
	}
}

// Wait blocks until a request to kind is allowed or ctx is done.
func (l *KindLimiter) Wait(ctx context.Context, kind string) error {
	if err := l.limiter(kind).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", kind, err)
	}
	return nil
}

func (l *KindLimiter) limiter(kind string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[kind]; ok {
		return lim
	}
	cfg, ok := l.overrides[kind]
	if !ok {
		cfg = l.def
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.PerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.PerSecond), burst)
	}
	l.limiters[kind] = lim
	return lim
}

// Fetcher waits for the limiter before delegating to the wrapped fetcher.
// All fetchers of the same kind should share one KindLimiter.
type Fetcher struct {
	inner   model.Fetcher
	limiter *KindLimiter
	kind    string
}

// NewFetcher wraps inner with per-kind rate limiting.
func NewFetcher(inner model.Fetcher, limiter *KindLimiter, kind string) *Fetcher {
	return &Fetcher{inner: inner, limiter: limiter, kind: kind}
}

// Fetch waits for a token, then fetches.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.RawItem, error) {
	if err := f.limiter.Wait(ctx, f.kind); err != nil {
		return nil, err
	}
	return f.inner.Fetch(ctx)
}
