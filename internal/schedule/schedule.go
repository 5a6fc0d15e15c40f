// Package schedule generates the daily report in the background on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"diderot/internal/archive"
	"diderot/internal/core"
	"diderot/internal/logger"

	"github.com/robfig/cron/v3"
)

// ReportGetter returns the report for a date, generating it when missing.
type ReportGetter interface {
	Get(ctx context.Context, date string, force bool) (*core.DailyReport, archive.State, error)
}

// Scheduler runs daily generation. A Scheduler with an empty cron expression is disabled.
type Scheduler struct {
	expr    string
	reports ReportGetter
	cron    *cron.Cron
	log     *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New validates the cron expression and builds a Scheduler.
func New(expr string, reports ReportGetter) (*Scheduler, error) {
	s := &Scheduler{
		expr:    expr,
		reports: reports,
		log:     logger.Get(),
		now:     time.Now,
	}
	if expr == "" {
		return s, nil
	}

	cl := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("%w: invalid schedule.cron %q: %v", core.ErrConfiguration, expr, err)
	}
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}

// Next returns the next planned run, or the zero time when disabled.
func (s *Scheduler) Next(from time.Time) time.Time {
	if !s.Enabled() {
		return time.Time{}
	}
	sched, err := parser.Parse(s.expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}

// Start begins running jobs. Jobs inherit ctx and stop when it is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		s.log.Info("Scheduled generation disabled")
		return
	}
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("Scheduled generation started", "cron", s.expr, "next", s.Next(s.now()).Format(time.RFC3339))
}

// Stop cancels any running job and waits for it to return.
func (s *Scheduler) Stop() {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = s.RunOnce(ctx)
}

// RunOnce generates today's report unless it is already stored.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	date := s.now().Format(core.DateLayout)
	start := time.Now()

	report, state, err := s.reports.Get(ctx, date, false)
	if err != nil {
		s.log.Error("Scheduled generation failed", "date", date, "error", err)
		return err
	}
	s.log.Info("Scheduled generation finished",
		"date", date,
		"state", string(state),
		"headlines", report.TotalHeadlines,
		"duration", time.Since(start).String(),
	)
	return nil
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
