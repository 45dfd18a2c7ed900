package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/schedule"
)

const (
	stateIdle int32 = iota
	stateScanning
)

// ContactLister returns every contact with at least one schedule field set.
type ContactLister interface {
	ListScheduled(ctx context.Context) ([]contact.Contact, error)
}

// Dispatcher sends one email.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Result
}

// Scheduler periodically sends emails to contacts whose schedule is due.
type Scheduler struct {
	contacts   ContactLister
	dispatcher Dispatcher
	cfg        *config
	logger     *slog.Logger

	state    atomic.Int32
	lastPass atomic.Int64

	mu        sync.Mutex
	cron      *cron.Cron
	startedAt time.Time
}

// New creates a scheduler. Call Start to begin ticking, or call Pass directly.
func New(contacts ContactLister, d Dispatcher, opts ...Option) (*Scheduler, error) {
	if contacts == nil || d == nil {
		return nil, fmt.Errorf("%w: contacts and dispatcher are required", ErrInvalidConfig)
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scheduler{
		contacts:   contacts,
		dispatcher: d,
		cfg:        cfg,
		logger:     cfg.logger.With(slog.String("component", "scheduler")),
	}, nil
}

// Start begins ticking every interval. The first pass runs one interval
// after Start. Ticks that arrive while a pass is running are dropped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyStarted
	}

	cl := cronLogger{log: s.logger}
	c := cron.New(
		cron.WithLocation(s.cfg.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	// Passes outlive the start context; Stop ends them.
	runCtx := context.WithoutCancel(ctx)
	expr := "@every " + s.cfg.interval.String()
	if _, err := c.AddFunc(expr, func() { s.tick(runCtx) }); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.Start()
	s.cron = c
	s.startedAt = s.cfg.now()

	s.logger.InfoContext(ctx, "scheduler started",
		slog.Duration("interval", s.cfg.interval),
		slog.Int("concurrency", s.cfg.concurrency),
		slog.String("location", s.cfg.location.String()),
	)
	return nil
}

// Stop stops ticking and waits for a running pass to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return ErrNotStarted
	}

	select {
	case <-c.Stop().Done():
		s.logger.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

// StartFunc returns a startup function for the scheduler.
func (s *Scheduler) StartFunc() func(context.Context) error {
	return s.Start
}

// Shutdown returns a shutdown function for the scheduler.
func (s *Scheduler) Shutdown() func(context.Context) error {
	return s.Stop
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.Pass(ctx, s.cfg.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduler pass failed", slog.Any("error", err))
		return
	}
	if report.Due > 0 {
		s.logger.InfoContext(ctx, "scheduler pass finished",
			slog.String("pass_id", report.PassID),
			slog.Int("due", report.Due),
			slog.Int("sent", report.Sent),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed),
		)
	}
}

// Pass runs one scan at now: it lists scheduled contacts, keeps those due
// under the scheduler policy and dispatches each (recipient, template) pair
// at most once. A pair already sent since the start of its scheduled day is
// skipped, so moving a contact's date later re-arms it.
//
// Pass returns ErrPassInProgress if another pass is running. Per-contact
// failures are recorded in the report and never stop the pass.
func (s *Scheduler) Pass(ctx context.Context, now time.Time) (Report, error) {
	if !s.state.CompareAndSwap(stateIdle, stateScanning) {
		return Report{}, ErrPassInProgress
	}
	defer s.state.Store(stateIdle)

	now = now.In(s.cfg.location)
	report := Report{PassID: uuid.NewString(), StartedAt: now}

	ctx = logger.WithPassID(ctx, report.PassID)
	ctx = logger.WithEntryPoint(ctx, "scheduler")

	contacts, err := s.contacts.ListScheduled(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrListContacts, err)
	}
	report.Scanned = len(contacts)

	seen := make(map[string]struct{}, len(contacts))
	due := make([]contact.Contact, 0, len(contacts))
	for _, c := range contacts {
		if !schedule.SchedulerPolicy.IsDue(c.Schedule(), now) {
			continue
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		due = append(due, c)
	}
	report.Due = len(due)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.concurrency)

	for _, c := range due {
		g.Go(func() error {
			res := s.dispatcher.Dispatch(gctx, dispatch.Request{
				Contact: c,
				UseAI:   s.cfg.useAI,
				Dedup:   dispatch.Since(c.Schedule().Since(s.cfg.location)),
			})
			mu.Lock()
			report.add(res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.cfg.now().In(s.cfg.location)
	s.lastPass.Store(report.FinishedAt.UnixNano())
	return report, nil
}

// Scanning reports whether a pass is running.
func (s *Scheduler) Scanning() bool {
	return s.state.Load() == stateScanning
}

// LastPass returns when the last pass finished.
func (s *Scheduler) LastPass() (time.Time, bool) {
	n := s.lastPass.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}
