package schedule

import "time"

// Policy decides whether a schedule is due at a given instant.
// Both policies are pure and monotone in now: once due, always due.
type Policy int

const (
	// SchedulerPolicy drives the background scheduler. A schedule without a
	// date never fires; a date without a time fires at DefaultClock.
	SchedulerPolicy Policy = iota

	// BatchPolicy drives batch sends. Missing fields mean "due now";
	// a date without a time is compared by calendar day.
	BatchPolicy
)

func (p Policy) String() string {
	switch p {
	case SchedulerPolicy:
		return "scheduler"
	case BatchPolicy:
		return "batch"
	default:
		return "unknown"
	}
}

// IsDue evaluates the schedule against now. Dates and clocks are interpreted
// in now's location.
func (p Policy) IsDue(s Schedule, now time.Time) bool {
	loc := now.Location()

	switch p {
	case SchedulerPolicy:
		if s.Date == nil {
			return false
		}
		clock := DefaultClock
		if s.Time != nil {
			clock = *s.Time
		}
		return !now.Before(clock.On(*s.Date, loc))

	case BatchPolicy:
		if s.Date == nil {
			return true
		}
		if s.Time == nil {
			return !DateOf(now).Before(*s.Date)
		}
		return !now.Before(s.Time.On(*s.Date, loc))
	}

	return false
}
