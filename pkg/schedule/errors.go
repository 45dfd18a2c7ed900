package schedule

import "errors"

var (
	ErrInvalidDate  = errors.New("schedule: invalid date, expected YYYY-MM-DD")
	ErrInvalidClock = errors.New("schedule: invalid time, expected HH:MM")
)
