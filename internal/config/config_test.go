package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, config.ProviderResend, cfg.Mail.Provider)
	assert.Equal(t, "Noah", cfg.Mail.SenderName)
	assert.Equal(t, "Noah", cfg.Mail.Resend.SenderName)
	assert.Equal(t, config.SourceDir, cfg.Templates.Source)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.ClaimTTL)
	assert.Equal(t, "gpt-4", cfg.AI.Model)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 0.0001)
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, int32(10), cfg.Database.MaxOpenConns)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
mail:
  provider: smtp
  sender_email: noah@example.com
  smtp:
    host: smtp.example.com
    port: 2525
templates:
  source: s3
  s3:
    bucket: outreach-templates
scheduler:
  interval: 30s
  timezone: America/Chicago
`)

	cfg, err := config.Load(p)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderSMTP, cfg.Mail.Provider)
	assert.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 2525, cfg.Mail.SMTP.Port)
	assert.Equal(t, "noah@example.com", cfg.Mail.SMTP.SenderEmail)
	assert.Equal(t, "outreach-templates", cfg.Templates.S3.Bucket)
	assert.Equal(t, "templates/", cfg.Templates.S3.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)

	loc, err := cfg.Scheduler.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "mail:\n  sender_name: File\n")
	t.Setenv("OUTREACH_MAIL_SENDER_NAME", "Env")
	t.Setenv("OUTREACH_SCHEDULER_CONCURRENCY", "9")
	t.Setenv("OUTREACH_REDIS_URL", "redis://localhost:6379/1")

	cfg, err := config.Load(p)
	require.NoError(t, err)

	assert.Equal(t, "Env", cfg.Mail.SenderName)
	assert.Equal(t, 9, cfg.Scheduler.Concurrency)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown provider", body: "mail:\n  provider: carrier-pigeon\n"},
		{name: "s3 without bucket", body: "templates:\n  source: s3\n"},
		{name: "unknown source", body: "templates:\n  source: ftp\n"},
		{name: "bad timezone", body: "scheduler:\n  timezone: Mars/Olympus\n"},
		{name: "zero interval", body: "scheduler:\n  interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
