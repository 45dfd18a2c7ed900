package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/outreach/pkg/health"
)

// staleAfter is how many intervals may pass without a finished pass before
// the scheduler is reported unhealthy.
const staleAfter = 3

// Healthcheck returns a readiness check that fails when the scheduler is
// running but has not finished a pass recently.
// Compatible with health.CheckFunc.
func Healthcheck(s *Scheduler) health.CheckFunc {
	return func(context.Context) error {
		if s == nil {
			return errors.New("scheduler: nil")
		}

		s.mu.Lock()
		started, startedAt := s.cron != nil, s.startedAt
		s.mu.Unlock()
		if !started {
			return nil
		}

		limit := staleAfter * s.cfg.interval
		now := s.cfg.now()
		last, ok := s.LastPass()
		if !ok {
			last = startedAt
		}
		if now.Sub(last) > limit && !s.Scanning() {
			return errors.Join(health.ErrStale, errors.New("scheduler: no pass since "+last.Format(time.RFC3339)))
		}
		return nil
	}
}
