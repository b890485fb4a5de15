package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoURL is returned by the normalizer when an item carries no usable link.
var ErrNoURL = errors.New("no usable url")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchError reports that a single source could not be read during a cycle.
// It never fails the cycle as a whole.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NormalizationError reports a raw item that could not be turned into a Posting.
// The item is dropped; the rest of the source is unaffected.
type NormalizationError struct {
	Source string
	Reason string
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("normalize %s: %s", e.Source, e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// StoreCorruptError means the persisted seen-set could not be read back.
type StoreCorruptError struct {
	Path string
	Err  error
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("seen store %s is unreadable: %v", e.Path, e.Err)
}

func (e *StoreCorruptError) Unwrap() error {
	return e.Err
}

// PersistError means new identifiers were found but could not be written to
// durable storage. The postings of that cycle will be reported again next cycle.
type PersistError struct {
	Pending int
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %d seen ids: %v", e.Pending, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
