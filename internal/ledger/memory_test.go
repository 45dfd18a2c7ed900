package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/ledger"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestMemory_AppendAndQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := ledger.NewMemory()

	sent, err := l.WasSent(ctx, "a@x.com", "t1.html")
	require.NoError(t, err)
	assert.False(t, sent)

	_, err = l.Append(ctx, ledger.NewEntry("a@x.com", "t1.html", t0))
	require.NoError(t, err)

	sent, err = l.WasSent(ctx, "a@x.com", "t1.html")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = l.WasSent(ctx, "a@x.com", "t2.html")
	require.NoError(t, err)
	assert.False(t, sent, "different template")

	since, err := l.WasSentSince(ctx, "a@x.com", "t1.html", t0)
	require.NoError(t, err)
	assert.True(t, since, "boundary is inclusive")
}

func TestMemory_ReArm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := ledger.NewMemory()
	_, err := l.Append(ctx, ledger.NewEntry("a@x.com", "t1.html", t0))
	require.NoError(t, err)

	newDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	since, err := l.WasSentSince(ctx, "a@x.com", "t1.html", newDate)
	require.NoError(t, err)
	assert.False(t, since)

	ever, err := l.WasSent(ctx, "a@x.com", "t1.html")
	require.NoError(t, err)
	assert.True(t, ever)
}

func TestMemory_MonotoneTimestamps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := ledger.NewMemory()

	_, err := l.Append(ctx, ledger.NewEntry("a@x.com", "t1.html", t0))
	require.NoError(t, err)
	stored, err := l.Append(ctx, ledger.NewEntry("b@x.com", "t1.html", t0.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, t0, stored.SentAt)
}

func TestMemory_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := ledger.NewMemory()
	for i, r := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := l.Append(ctx, ledger.NewEntry(r, "t1.html", t0.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	all, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c@x.com", all[0].Recipient)

	two, err := l.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestMemory_InvalidEntry(t *testing.T) {
	t.Parallel()

	_, err := ledger.NewMemory().Append(context.Background(), ledger.NewEntry("", "t1.html", t0))
	require.ErrorIs(t, err, ledger.ErrInvalidEntry)

	_, err = ledger.NewMemory().Append(context.Background(), ledger.Entry{Recipient: "a@x.com", Template: "t"})
	require.ErrorIs(t, err, ledger.ErrInvalidEntry)
}

func TestNewEntry_Trims(t *testing.T) {
	t.Parallel()

	e := ledger.NewEntry(" a@x.com ", " t1.html", t0)
	assert.Equal(t, "a@x.com", e.Recipient)
	assert.Equal(t, "t1.html", e.Template)
	assert.NotEmpty(t, e.ID.String())
}
