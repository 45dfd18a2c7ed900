package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Config{URL: "postgres://x", MaxOpenConns: 4, MinConns: 9}.withDefaults()

	assert.Equal(t, "schema_migrations", got.MigrationsTable)
	assert.Equal(t, int32(4), got.MaxOpenConns)
	assert.Equal(t, int32(2), got.MinConns)
	assert.Equal(t, time.Minute, got.HealthCheckPeriod)
	assert.Equal(t, 5*time.Second, got.RetryInterval)
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Config{})
	require.ErrorIs(t, err, ErrEmptyConnectionURL)

	_, err = Connect(context.Background(), Config{URL: "postgres://%zz"})
	require.ErrorIs(t, err, ErrFailedToParseDBConfig)
}

func TestHealthcheck_NilPool(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheckFailed)
}
