// Package scheduler triggers scans: once at startup, then on a cron
// expression or a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobradar/internal/engine"
)

// Scanner runs one scan cycle. *engine.Engine satisfies it.
type Scanner interface {
	Scan(ctx context.Context) (*engine.Result, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler owns the main loop.
type Scheduler struct {
	scanner  Scanner
	schedule cron.Schedule
	desc     string
	logger   *slog.Logger
}

// New creates a scheduler. A non-empty spec (standard five-field cron or a
// descriptor such as "@hourly") takes precedence over interval.
func New(scanner Scanner, spec string, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{scanner: scanner, logger: logger}
	switch {
	case spec != "":
		sched, err := parser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
		}
		s.schedule, s.desc = sched, spec
	case interval > 0:
		s.schedule, s.desc = cron.Every(interval), "@every "+interval.String()
	default:
		return nil, fmt.Errorf("either a schedule or a positive polling interval is required")
	}
	return s, nil
}

// Run performs one immediate scan, then scans on the schedule until ctx is
// cancelled. A tick that arrives while a scan is still running is skipped.
// It returns nil on shutdown once the running scan, if any, has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "schedule", s.desc)

	s.scan(ctx)
	if ctx.Err() != nil {
		s.logger.Info("shutting down scheduler")
		return nil
	}

	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.scan(ctx) }))
	c.Start()
	s.logger.Info("next scan scheduled", "at", s.schedule.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) scan(ctx context.Context) {
	res, err := s.scanner.Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("scan interrupted by shutdown")
			return
		}
		s.logger.Error("scan finished with errors", "error", err)
	}
	if res != nil && len(res.New) > 0 {
		s.logger.Info("new postings found", "count", len(res.New), "cycle_id", res.CycleID)
	}
}

// cronLogger routes cron's own messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
