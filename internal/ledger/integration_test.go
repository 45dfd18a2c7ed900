//go:build integration

package ledger_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/db/migrations"
	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/pkg/db"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/redis"
)

func TestPostgres_Ledger(t *testing.T) {
	url := os.Getenv("OUTREACH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("OUTREACH_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Config{URL: url, RetryAttempts: 1})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool, migrations.FS, "schema_migrations", logger.NewNope()))

	recipient := "ledger-" + time.Now().Format("150405.000000") + "@example.com"
	l := ledger.NewPostgres(pool)

	sent, err := l.WasSent(ctx, recipient, "t1.html")
	require.NoError(t, err)
	assert.False(t, sent)

	e := ledger.NewEntry(recipient, "t1.html", time.Now())
	e.Subject = "Hello"
	stored, err := l.Append(ctx, e)
	require.NoError(t, err)

	sent, err = l.WasSent(ctx, recipient, "t1.html")
	require.NoError(t, err)
	assert.True(t, sent)

	since, err := l.WasSentSince(ctx, recipient, "t1.html", stored.SentAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, since)

	last, ok, err := l.LastSent(ctx, recipient, "t1.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, stored.SentAt, last, time.Millisecond)

	entries, err := l.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = pool.Exec(ctx, "DELETE FROM send_log WHERE recipient = $1", recipient)
	require.Error(t, err, "send_log is append-only")
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("OUTREACH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("OUTREACH_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url, redis.WithRetry(1, 0))
	require.NoError(t, err)
	defer client.Close()

	c := ledger.NewRedisCache(client, "outreach-test:", time.Minute)
	k := "a@x.com|" + time.Now().Format(time.RFC3339Nano)

	_, ok, err := c.Get(ctx, k)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, k, t0))
	at, ok, err := c.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(t0))
}
