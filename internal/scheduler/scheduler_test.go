package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/engine"
	"github.com/amishk599/jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingScanner counts Scan calls and optionally blocks until released.
type countingScanner struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
}

func (c *countingScanner) Scan(_ context.Context) (*engine.Result, error) {
	if n := c.calls.Add(1); n == 1 && c.started != nil {
		close(c.started)
	}
	return &engine.Result{New: []model.Posting{{Title: "x"}}}, c.err
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		interval time.Duration
		wantErr  bool
	}{
		{"interval", "", 2 * time.Minute, false},
		{"cron", "*/5 * * * *", 0, false},
		{"descriptor", "@hourly", 0, false},
		{"cron wins over interval", "0 9 * * 1-5", time.Minute, false},
		{"bad cron", "every tuesday", 0, true},
		{"nothing", "", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(&countingScanner{}, tc.spec, tc.interval, discardLogger())
			if (err != nil) != tc.wantErr {
				t.Errorf("New(%q, %v) error = %v, wantErr %v", tc.spec, tc.interval, err, tc.wantErr)
			}
		})
	}
}

func TestRun_ImmediateScanThenStopsOnCancel(t *testing.T) {
	scanner := &countingScanner{started: make(chan struct{})}
	s, err := New(scanner, "", time.Hour, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-scanner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate scan")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if n := scanner.calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 scan with an hourly interval, got %d", n)
	}
}

func TestRun_TicksOnInterval(t *testing.T) {
	scanner := &countingScanner{}
	s, err := New(scanner, "", time.Second, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if n := scanner.calls.Load(); n < 2 {
		t.Errorf("expected the immediate scan plus at least one tick, got %d", n)
	}
}

func TestRun_ScanErrorsDoNotStopTheLoop(t *testing.T) {
	scanner := &countingScanner{err: errors.New("persist failed")}
	s, err := New(scanner, "", time.Second, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if n := scanner.calls.Load(); n < 2 {
		t.Errorf("expected scanning to continue after an error, got %d scans", n)
	}
}

func TestRun_AlreadyCancelled(t *testing.T) {
	scanner := &countingScanner{}
	s, _ := New(scanner, "@every 1h", 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}
