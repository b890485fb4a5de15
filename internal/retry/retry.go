// Package retry provides a fetcher decorator that retries transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
	maxDelay          = 30 * time.Second
)

// Fetcher retries transient failures of the wrapped fetcher with exponential
// backoff and jitter. A Retry-After from the server takes precedence.
type Fetcher struct {
	inner      model.Fetcher
	source     string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New wraps inner with retry logic. maxRetries is the number of additional
// attempts after the first failure; baseDelay is doubled on each retry.
// A negative maxRetries or non-positive baseDelay selects the default.
func New(inner model.Fetcher, source string, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Fetcher {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Fetcher{
		inner:      inner,
		source:     source,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// Fetch calls the wrapped fetcher, retrying while the error is transient and
// attempts remain.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.RawItem, error) {
	items, err := f.inner.Fetch(ctx)
	for attempt := 1; err != nil && isRetryable(err) && attempt <= f.maxRetries; attempt++ {
		delay := f.backoffDelay(attempt, err)
		f.logger.Warn("retrying after transient error",
			"source", f.source,
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", err,
		)
		if serr := f.sleep(ctx, delay); serr != nil {
			return nil, fmt.Errorf("retry cancelled: %w (last error: %v)", serr, err)
		}
		items, err = f.inner.Fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// backoffDelay computes the delay for a given attempt with ±30% jitter,
// capped at maxDelay.
func (f *Fetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, maxDelay)
	}

	delay := f.baseDelay << (attempt - 1)
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	return min(delay, maxDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryable reports whether err is a transient failure: a network error,
// a 429, or a 5xx. Cancellation and other HTTP statuses are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
