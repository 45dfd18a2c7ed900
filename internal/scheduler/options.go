package scheduler

import (
	"log/slog"
	"time"
)

const (
	defaultInterval    = time.Minute
	defaultConcurrency = 4
)

// config holds scheduler configuration.
type config struct {
	logger      *slog.Logger
	location    *time.Location
	now         func() time.Time
	interval    time.Duration
	concurrency int
	useAI       bool
}

func newConfig() *config {
	return &config{
		location:    time.Local,
		now:         time.Now,
		interval:    defaultInterval,
		concurrency: defaultConcurrency,
	}
}

// Option configures the scheduler.
type Option func(*config)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithConcurrency bounds the number of dispatches running at once in a pass.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLocation sets the zone that schedule dates and clocks are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithClock injects the time source used by ticks.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAI enables AI personalization for scheduled sends.
func WithAI(enabled bool) Option {
	return func(c *config) {
		c.useAI = enabled
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
