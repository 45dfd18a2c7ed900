package smtp

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/outreach/pkg/mailer"
)

type dialerFunc func(m ...*gomail.Message) error

func (f dialerFunc) DialAndSend(m ...*gomail.Message) error { return f(m...) }

func TestNew_RequiresHost(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrMissingHost)
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var sent *gomail.Message
	s := NewWithDialer(dialerFunc(func(m ...*gomail.Message) error {
		sent = m[0]
		return nil
	}), Config{SenderEmail: "noah@example.com", SenderName: "Noah"})

	err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"ada@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, []string{"Noah <noah@example.com>"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"ada@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, sent.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>Hi</p>")
}

func TestSender_Send_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("relay down")
	s := NewWithDialer(dialerFunc(func(...*gomail.Message) error { return boom }), Config{})

	err := s.Send(context.Background(), &mailer.Email{To: []string{"a@x.com"}, Subject: "s", HTML: "h"})
	require.ErrorIs(t, err, boom)
}

func TestSender_Send_ContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	s := NewWithDialer(dialerFunc(func(...*gomail.Message) error {
		<-release
		return nil
	}), Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, &mailer.Email{To: []string{"a@x.com"}, Subject: "s", HTML: "h"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
