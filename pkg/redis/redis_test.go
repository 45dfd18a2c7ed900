package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"empty URL", "", ErrEmptyConnectionURL},
		{"http scheme", "http://localhost:6379", ErrFailedToParseURL},
		{"no scheme", "localhost:6379", ErrFailedToParseURL},
		{"invalid port", "redis://localhost:notaport", ErrFailedToParseURL},
		{"invalid database", "redis://localhost:6379/notanumber", ErrFailedToParseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, tt.url)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, client)
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Port 1 is reserved and refuses connections.
	_, err := Open(ctx, "redis://127.0.0.1:1/0", WithRetry(1, 0), WithTimeout(200*time.Millisecond))
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdown(t *testing.T) {
	t.Parallel()

	closed := false
	require.NoError(t, Shutdown(closerFunc(func() error { closed = true; return nil }))(context.Background()))
	require.True(t, closed)

	boom := errors.New("close error")
	require.ErrorIs(t, Shutdown(closerFunc(func() error { return boom }))(context.Background()), boom)
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.ErrorIs(t, wait(ctx, 10*time.Second), context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	WithPoolSize(25)(o)
	WithPoolSize(-1)(o)
	WithRetry(5, time.Second)(o)
	WithTimeout(0)(o)

	require.Equal(t, 25, o.poolSize)
	require.Equal(t, 5, o.retryAttempts)
	require.Equal(t, time.Second, o.retryInterval)
	require.Equal(t, 3*time.Second, o.timeout)
}
