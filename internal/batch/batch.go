// Package batch sends outreach email to every eligible contact in one run.
//
// A run walks all contacts (or, in scheduled-only mode, those whose send date
// is absent or not in the future), skips incomplete rows and pairs already in
// the ledger, and dispatches the rest with the static subject map. Running a
// batch twice sends nothing the second time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
	"github.com/dmitrymomot/outreach/pkg/schedule"
)

var (
	ErrListContacts = errors.New("batch: failed to list contacts")
	ErrInvalidInput = errors.New("batch: invalid runner configuration")
)

// ContactLister is the part of the contact store a batch reads.
type ContactLister interface {
	List(ctx context.Context, f contact.Filter) ([]contact.Contact, error)
	ListDue(ctx context.Context, today schedule.Date) ([]contact.Contact, error)
}

// Dispatcher sends one email.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Result
}

// Options select what a run does.
type Options struct {
	// Now is the run's reference time. Zero means the runner's clock.
	Now time.Time
	// Concurrency bounds parallel dispatches. Values below 1 mean 1.
	Concurrency   int
	UseAI         bool
	ScheduledOnly bool
	DryRun        bool
}

// Report summarises a run.
type Report struct {
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	RunID      string            `json:"runId"`
	Results    []dispatch.Result `json:"results"`
	Total      int               `json:"total"`
	Incomplete int               `json:"incomplete"`
	NotDue     int               `json:"notDue"`
	Sent       int               `json:"sent"`
	DryRun     int               `json:"dryRun"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
}

func (r *Report) add(res dispatch.Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case dispatch.OutcomeSent:
		r.Sent++
	case dispatch.OutcomeDryRun:
		r.DryRun++
	case dispatch.OutcomeSkipped:
		r.Skipped++
	case dispatch.OutcomeFailed:
		r.Failed++
		if res.Sent {
			r.Sent++
		}
	}
}

// Runner executes batch runs.
type Runner struct {
	contacts   ContactLister
	dispatcher Dispatcher
	subjects   mailer.SubjectPolicy
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLocation sets the zone used for "today" and schedule clocks.
func WithLocation(loc *time.Location) Option {
	return func(r *Runner) {
		if loc != nil {
			r.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner. subjects is the static template to subject map
// batch sends require.
func NewRunner(contacts ContactLister, d Dispatcher, subjects mailer.SubjectPolicy, opts ...Option) (*Runner, error) {
	if contacts == nil || d == nil || subjects == nil {
		return nil, fmt.Errorf("%w: contacts, dispatcher and subjects are required", ErrInvalidInput)
	}
	r := &Runner{
		contacts:   contacts,
		dispatcher: d,
		subjects:   subjects,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "batch"))
	return r, nil
}

// Run performs one batch. Per-contact problems land in the report; only a
// failure to list contacts aborts the run.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	now := opts.Now
	if now.IsZero() {
		now = r.now()
	}
	now = now.In(r.location)

	report := Report{RunID: uuid.NewString(), StartedAt: now}
	ctx = logger.WithPassID(ctx, report.RunID)
	ctx = logger.WithEntryPoint(ctx, "batch")

	var (
		contacts []contact.Contact
		err      error
	)
	if opts.ScheduledOnly {
		contacts, err = r.contacts.ListDue(ctx, schedule.DateOf(now))
	} else {
		contacts, err = r.contacts.List(ctx, contact.Filter{})
	}
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrListContacts, err)
	}
	report.Total = len(contacts)

	seen := make(map[string]struct{}, len(contacts))
	eligible := make([]contact.Contact, 0, len(contacts))
	for _, c := range contacts {
		if !c.Complete() {
			report.Incomplete++
			r.logger.WarnContext(ctx, "skipping incomplete contact", slog.Int64("contact_id", c.ID))
			continue
		}
		if opts.ScheduledOnly && !schedule.BatchPolicy.IsDue(c.Schedule(), now) {
			report.NotDue++
			continue
		}
		if _, dup := seen[c.Key()]; dup {
			report.Skipped++
			continue
		}
		seen[c.Key()] = struct{}{}
		eligible = append(eligible, c)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for _, c := range eligible {
		g.Go(func() error {
			res := r.dispatcher.Dispatch(gctx, dispatch.Request{
				Contact:  c,
				Subjects: r.subjects,
				UseAI:    opts.UseAI,
				DryRun:   opts.DryRun,
				Dedup:    dispatch.Lifetime(),
				Note:     dispatch.NoteAIOnly,
			})
			mu.Lock()
			report.add(res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = r.now().In(r.location)
	r.logger.InfoContext(ctx, "batch complete",
		slog.Int("total", report.Total),
		slog.Int("sent", report.Sent),
		slog.Int("dry_run", report.DryRun),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Bool("dry", opts.DryRun),
	)
	return report, nil
}
