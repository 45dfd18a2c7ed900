package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/internal/rewrite"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
)

// Dispatcher runs the send pipeline shared by every entry point.
type Dispatcher struct {
	templates mailer.TemplateStore
	sender    mailer.Sender
	ledger    ledger.Ledger
	rewriter  rewrite.Rewriter
	claims    Claimer
	log       *slog.Logger
	now       func() time.Time

	senderName  string
	senderEmail string

	appendRetries uint64
	appendBackoff time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRewriter enables AI rewriting for requests with UseAI set.
func WithRewriter(r rewrite.Rewriter) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.rewriter = r
		}
	}
}

// WithClaimer replaces the in-process claimer.
func WithClaimer(c Claimer) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.claims = c
		}
	}
}

// WithFrom sets the sender identity used for From and template fields.
func WithFrom(name, email string) Option {
	return func(d *Dispatcher) {
		d.senderName = name
		d.senderEmail = email
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithAppendRetry sets how often a failed ledger append is retried after a
// successful send, and the initial backoff.
func WithAppendRetry(retries uint64, backoff time.Duration) Option {
	return func(d *Dispatcher) {
		d.appendRetries = retries
		if backoff > 0 {
			d.appendBackoff = backoff
		}
	}
}

// New creates a Dispatcher.
func New(templates mailer.TemplateStore, sender mailer.Sender, l ledger.Ledger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		templates:     templates,
		sender:        sender,
		ledger:        l,
		rewriter:      rewrite.Disabled{},
		claims:        NewLocalClaims(),
		log:           logger.NewNope(),
		now:           time.Now,
		senderName:    "Noah",
		appendRetries: 3,
		appendBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Message is a prepared email.
type Message struct {
	Recipient string
	Template  string
	Subject   string
	HTML      string
}

// Prepare renders the email for req without sending, claiming or recording
// anything. Previews use it.
func (d *Dispatcher) Prepare(ctx context.Context, req Request) (Message, Result) {
	res := d.newResult(req)
	if !d.complete(req) {
		return Message{}, res.fail(ReasonIncompleteContact, ErrIncompleteContact)
	}
	return d.prepare(ctx, req, res)
}

// Dispatch sends one email. It never panics on a bad contact; every problem
// is reported in the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	res := d.dispatch(ctx, req)
	d.logResult(ctx, res)
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Result {
	res := d.newResult(req)

	if !d.complete(req) {
		return res.fail(ReasonIncompleteContact, ErrIncompleteContact)
	}

	if req.DryRun {
		if r, done := d.checkHistory(ctx, req, res); done {
			return r
		}
		msg, r := d.prepare(ctx, req, res)
		if r.Err != nil {
			return r
		}
		r.Outcome = OutcomeDryRun
		r.Subject = msg.Subject
		r.HTML = msg.HTML
		return r
	}

	release, ok, err := d.claims.Claim(ctx, claimKey(res.Recipient, res.Template))
	if err != nil {
		return res.fail(ReasonClaim, err)
	}
	if !ok {
		return res.skip(ReasonInFlight)
	}
	defer release()

	if r, done := d.checkHistory(ctx, req, res); done {
		return r
	}

	msg, res := d.prepare(ctx, req, res)
	if res.Err != nil {
		return res
	}
	res.Subject = msg.Subject

	email := &mailer.Email{
		To:      []string{msg.Recipient},
		From:    mailer.Recipient(d.senderName, d.senderEmail),
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Tags:    d.tags(ctx, msg.Template),
	}
	if err := d.sender.Send(ctx, email); err != nil {
		return res.fail(ReasonTransport, fmt.Errorf("%w: %w", ErrTransport, err))
	}
	res.Sent = true
	res.Outcome = OutcomeSent

	if req.NoRecord {
		return res
	}

	entry := ledger.NewEntry(msg.Recipient, msg.Template, d.now())
	entry.Subject = msg.Subject
	entry.DisplayName = strings.TrimSpace(req.Contact.FirstName)

	stored, err := d.appendEntry(ctx, entry)
	if err != nil {
		return res.fail(ReasonLedgerWrite, fmt.Errorf("%w: %w", ErrLedgerWrite, err))
	}
	res.Entry = &stored
	return res
}

// claimKey ignores address case so "Ada@x" and "ada@x" share one claim.
func claimKey(recipient, template string) string {
	return strings.ToLower(recipient) + "|" + template
}

func (d *Dispatcher) newResult(req Request) Result {
	return Result{
		ContactID: req.Contact.ID,
		Recipient: strings.TrimSpace(req.recipient()),
		Template:  strings.TrimSpace(req.template()),
	}
}

func (d *Dispatcher) complete(req Request) bool {
	c := req.Contact
	if req.Template != "" {
		c.Template = req.Template
	}
	if req.To != "" {
		c.Email = req.To
	}
	return c.Complete()
}

// checkHistory applies the request's dedup mode. done is true when the
// dispatch must stop with the returned result.
func (d *Dispatcher) checkHistory(ctx context.Context, req Request, res Result) (Result, bool) {
	var (
		sent bool
		err  error
	)
	switch req.Dedup.Mode {
	case DedupLifetime:
		sent, err = d.ledger.WasSent(ctx, res.Recipient, res.Template)
	case DedupSince:
		sent, err = d.ledger.WasSentSince(ctx, res.Recipient, res.Template, req.Dedup.Since)
	default:
		return res, false
	}
	if err != nil {
		return res.fail(ReasonLedgerRead, fmt.Errorf("%w: %w", ErrLedgerRead, err)), true
	}
	if sent {
		return res.skip(ReasonAlreadySent), true
	}
	return res, false
}

func (d *Dispatcher) prepare(ctx context.Context, req Request, res Result) (Message, Result) {
	c := req.Contact.Normalized()
	msg := Message{Recipient: res.Recipient, Template: res.Template}

	body, err := d.templates.Load(ctx, msg.Template)
	switch {
	case errors.Is(err, mailer.ErrTemplateNotFound), errors.Is(err, mailer.ErrInvalidTemplateName):
		return Message{}, res.fail(ReasonTemplateNotFound, fmt.Errorf("%w: %s", ErrTemplateNotFound, msg.Template))
	case err != nil:
		return Message{}, res.fail(ReasonTemplateUnavailable, fmt.Errorf("%w: %w", ErrTemplateUnavailable, err))
	}

	if req.OverrideHTML != "" {
		msg.HTML = req.OverrideHTML
	} else {
		msg.HTML = mailer.Render(body, mailer.Fields{
			mailer.FieldFirstName:    c.FirstName,
			mailer.FieldSenderName:   d.senderName,
			mailer.FieldSenderEmail:  d.senderEmail,
			mailer.FieldPersonalNote: d.personalNote(ctx, req, c.Note, res.Recipient),
		})
	}

	if req.Subject != "" {
		msg.Subject = req.Subject
		return msg, res
	}

	policy := req.Subjects
	if policy == nil {
		policy = mailer.DerivedSubjects{}
	}
	subject, ok := policy.Subject(msg.Template, c.FirstName)
	if !ok {
		return Message{}, res.fail(ReasonMissingSubject, fmt.Errorf("%w: %s", ErrMissingSubject, msg.Template))
	}

	if req.UseAI && c.Note != "" {
		rewritten, err := d.rewriter.RewriteSubject(ctx, subject, c.Note)
		switch {
		case errors.Is(err, rewrite.ErrDisabled):
		case err != nil:
			d.log.WarnContext(ctx, "subject rewrite failed, keeping original",
				slog.String("recipient", res.Recipient),
				slog.String("error", err.Error()),
			)
		default:
			subject = rewritten
		}
	}
	msg.Subject = subject
	return msg, res
}

// personalNote returns the note for the template. With AI on, a failed
// rewrite yields "" rather than the raw note. NoteAIOnly never falls back
// to the raw note.
func (d *Dispatcher) personalNote(ctx context.Context, req Request, note, recipient string) string {
	raw := note
	if req.Note == NoteAIOnly {
		raw = ""
	}
	if !req.UseAI || note == "" {
		return raw
	}
	rewritten, err := d.rewriter.RewriteNote(ctx, note)
	switch {
	case errors.Is(err, rewrite.ErrDisabled):
		return raw
	case err != nil:
		d.log.WarnContext(ctx, "note rewrite failed, sending without note",
			slog.String("recipient", recipient),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return rewritten
}

func (d *Dispatcher) appendEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	// The email is already out; a cancelled caller must not lose the record.
	ctx = context.WithoutCancel(ctx)

	var stored ledger.Entry
	backoff := retry.WithMaxRetries(d.appendRetries, retry.NewExponential(d.appendBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		stored, err = d.ledger.Append(ctx, e)
		if err == nil {
			return nil
		}
		if errors.Is(err, ledger.ErrInvalidEntry) {
			return err
		}
		return retry.RetryableError(err)
	})
	return stored, err
}

func (d *Dispatcher) tags(ctx context.Context, template string) map[string]string {
	tags := map[string]string{"template": strings.TrimSuffix(template, mailer.TemplateExt)}
	if ep := logger.EntryPoint(ctx); ep != "" {
		tags["entry_point"] = ep
	}
	return tags
}

func (d *Dispatcher) logResult(ctx context.Context, res Result) {
	attrs := []any{
		slog.String("recipient", res.Recipient),
		slog.String("template", res.Template),
		slog.String("outcome", string(res.Outcome)),
	}
	if res.Reason != ReasonNone {
		attrs = append(attrs, slog.String("reason", string(res.Reason)))
	}

	switch {
	case res.Reason == ReasonLedgerWrite:
		d.log.ErrorContext(ctx, "email sent but ledger append failed", append(attrs, slog.String("error", res.Error()))...)
	case res.Err != nil:
		d.log.WarnContext(ctx, "dispatch failed", append(attrs, slog.String("error", res.Error()))...)
	case res.Outcome == OutcomeSent:
		d.log.InfoContext(ctx, "email sent", append(attrs, slog.String("subject", res.Subject))...)
	default:
		d.log.DebugContext(ctx, "dispatch finished", attrs...)
	}
}
