package smtp

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/outreach/pkg/mailer"
)

// ErrMissingHost is returned by New when no relay host is configured.
var ErrMissingHost = errors.New("smtp: host is required")

// Dialer sends prepared messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender implements mailer.Sender over an SMTP relay.
type Sender struct {
	dialer Dialer
	config Config
}

// New creates an SMTP sender for cfg.
func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return NewWithDialer(gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password), cfg), nil
}

// NewWithDialer creates a sender with a custom dialer.
func NewWithDialer(d Dialer, cfg Config) *Sender {
	return &Sender{dialer: d, config: cfg}
}

// Send implements mailer.Sender. gomail has no context support, so a
// cancelled ctx returns early while the dial finishes in the background.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	m := s.message(email)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp: failed to send email: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: failed to send email: %w", err)
		}
		return nil
	}
}

func (s *Sender) message(email *mailer.Email) *gomail.Message {
	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	for k, v := range email.Headers {
		m.SetHeader(k, v)
	}
	m.SetBody("text/html", email.HTML)
	return m
}
