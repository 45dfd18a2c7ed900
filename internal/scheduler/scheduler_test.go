package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/internal/scheduler"
	"github.com/dmitrymomot/outreach/pkg/health"
	"github.com/dmitrymomot/outreach/pkg/mailer"
	"github.com/dmitrymomot/outreach/pkg/schedule"
)

type env struct {
	contacts *contact.Memory
	ledger   *ledger.Memory
	sends    *atomic.Int32
	sched    *scheduler.Scheduler
}

func newEnv(t *testing.T, seed ...contact.Contact) env {
	t.Helper()

	var sends atomic.Int32
	sender := mailer.SenderFunc(func(context.Context, *mailer.Email) error {
		sends.Add(1)
		return nil
	})
	store := mailer.NewFSStore(fstest.MapFS{
		"t1.html": &fstest.MapFile{Data: []byte("<p>Hi {{firstName}}</p>")},
		"t2.html": &fstest.MapFile{Data: []byte("<p>Again {{firstName}}</p>")},
	})

	l := ledger.NewMemory()
	contacts := contact.NewMemory(seed...)
	d := dispatch.New(store, sender, l, dispatch.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	}))

	s, err := scheduler.New(contacts, d, scheduler.WithLocation(time.UTC))
	require.NoError(t, err)

	return env{contacts: contacts, ledger: l, sends: &sends, sched: s}
}

func date(t *testing.T, s string) *schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func clock(t *testing.T, s string) *schedule.Clock {
	t.Helper()
	c, err := schedule.ParseClock(s)
	require.NoError(t, err)
	return &c
}

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

func TestPass_DateOnlyFiresAtDefaultClock(t *testing.T) {
	t.Parallel()

	e := newEnv(t, contact.Contact{FirstName: "A", Email: "a@x.com", Template: "t1.html", SendDate: date(t, "2024-01-01")})

	report, err := e.sched.Pass(context.Background(), at(9))
	require.NoError(t, err)
	assert.Zero(t, report.Due)
	assert.Zero(t, e.ledger.Len())

	report, err = e.sched.Pass(context.Background(), at(10))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, e.ledger.Len())
	assert.Equal(t, int32(1), e.sends.Load())
}

func TestPass_SecondPassSkipsSentContact(t *testing.T) {
	t.Parallel()

	e := newEnv(t, contact.Contact{FirstName: "A", Email: "a@x.com", Template: "t1.html", SendDate: date(t, "2024-01-01")})

	_, err := e.sched.Pass(context.Background(), at(10))
	require.NoError(t, err)

	report, err := e.sched.Pass(context.Background(), at(11))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Results, 1)
	assert.Equal(t, dispatch.ReasonAlreadySent, report.Results[0].Reason)
	assert.Equal(t, 1, e.ledger.Len())
	assert.Equal(t, int32(1), e.sends.Load())
}

func TestPass_UnknownTemplateDoesNotStopPass(t *testing.T) {
	t.Parallel()

	e := newEnv(t,
		contact.Contact{FirstName: "A", Email: "a@x.com", Template: "missing.html", SendDate: date(t, "2024-01-01")},
		contact.Contact{FirstName: "B", Email: "b@x.com", Template: "t1.html", SendDate: date(t, "2024-01-01")},
		contact.Contact{FirstName: "C", Email: "c@x.com", Template: "t2.html", SendDate: date(t, "2023-12-31"), SendTime: clock(t, "18:30")},
	)

	report, err := e.sched.Pass(context.Background(), at(10))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Due)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, e.ledger.Len())

	for _, r := range report.Results {
		if r.Recipient == "a@x.com" {
			assert.Equal(t, dispatch.ReasonTemplateNotFound, r.Reason)
		}
	}

	sent, err := e.ledger.WasSent(context.Background(), "a@x.com", "missing.html")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestPass_NeverPicksUndatedContacts(t *testing.T) {
	t.Parallel()

	e := newEnv(t,
		contact.Contact{FirstName: "A", Email: "a@x.com", Template: "t1.html"},
		contact.Contact{FirstName: "B", Email: "b@x.com", Template: "t1.html", SendTime: clock(t, "08:00")},
	)

	report, err := e.sched.Pass(context.Background(), at(23))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.Due)
	assert.Zero(t, e.sends.Load())
}

func TestPass_OneDispatchPerKey(t *testing.T) {
	t.Parallel()

	e := newEnv(t,
		contact.Contact{FirstName: "A", Email: "a@x.com", Template: "t1.html", SendDate: date(t, "2024-01-01")},
		contact.Contact{FirstName: "A2", Email: " a@x.com ", Template: "t1.html", SendDate: date(t, "2023-06-01")},
	)

	report, err := e.sched.Pass(context.Background(), at(12))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, int32(1), e.sends.Load())
}

func TestPass_RescheduleRearms(t *testing.T) {
	t.Parallel()

	e := newEnv(t, contact.Contact{FirstName: "A", Email: "a@x.com", Template: "t1.html", SendDate: date(t, "2024-01-01")})
	ctx := context.Background()

	_, err := e.sched.Pass(ctx, at(10))
	require.NoError(t, err)

	next := date(t, "2024-01-02")
	_, err = e.contacts.Update(ctx, 1, contact.Patch{SendDate: contact.Optional[schedule.Date]{Set: true, Value: next}})
	require.NoError(t, err)

	report, err := e.sched.Pass(ctx, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, int32(2), e.sends.Load())
}

type blockingLister struct {
	entered chan struct{}
	release chan struct{}
}

func (b blockingLister) ListScheduled(context.Context) ([]contact.Contact, error) {
	close(b.entered)
	<-b.release
	return nil, nil
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, dispatch.Request) dispatch.Result {
	return dispatch.Result{}
}

func TestPass_OverlapIsRejected(t *testing.T) {
	t.Parallel()

	lister := blockingLister{entered: make(chan struct{}), release: make(chan struct{})}
	s, err := scheduler.New(lister, nopDispatcher{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Pass(context.Background(), time.Now())
		done <- err
	}()

	<-lister.entered
	assert.True(t, s.Scanning())
	_, err = s.Pass(context.Background(), time.Now())
	require.ErrorIs(t, err, scheduler.ErrPassInProgress)

	close(lister.release)
	require.NoError(t, <-done)
	assert.False(t, s.Scanning())

	_, ok := s.LastPass()
	assert.True(t, ok)
}

type failingLister struct{}

func (failingLister) ListScheduled(context.Context) ([]contact.Contact, error) {
	return nil, errors.New("db down")
}

func TestPass_ListError(t *testing.T) {
	t.Parallel()

	s, err := scheduler.New(failingLister{}, nopDispatcher{})
	require.NoError(t, err)

	_, err = s.Pass(context.Background(), time.Now())
	require.ErrorIs(t, err, scheduler.ErrListContacts)
	assert.False(t, s.Scanning())
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.sched.Start(ctx))
	require.ErrorIs(t, e.sched.Start(ctx), scheduler.ErrAlreadyStarted)
	require.NoError(t, scheduler.Healthcheck(e.sched)(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, e.sched.Stop(stopCtx))
	require.ErrorIs(t, e.sched.Stop(stopCtx), scheduler.ErrNotStarted)
}

func TestHealthcheck_Stale(t *testing.T) {
	t.Parallel()

	var now atomic.Int64
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now.Store(start.UnixNano())

	s, err := scheduler.New(contact.NewMemory(), nopDispatcher{},
		scheduler.WithInterval(time.Hour),
		scheduler.WithClock(func() time.Time { return time.Unix(0, now.Load()).UTC() }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, scheduler.Healthcheck(s)(ctx))

	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	now.Store(start.Add(2 * time.Hour).UnixNano())
	require.NoError(t, scheduler.Healthcheck(s)(ctx))

	now.Store(start.Add(4 * time.Hour).UnixNano())
	require.ErrorIs(t, scheduler.Healthcheck(s)(ctx), health.ErrStale)

	_, err = s.Pass(ctx, time.Unix(0, now.Load()))
	require.NoError(t, err)
	require.NoError(t, scheduler.Healthcheck(s)(ctx))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := scheduler.New(nil, nopDispatcher{})
	require.ErrorIs(t, err, scheduler.ErrInvalidConfig)
}
