package scheduler

import "errors"

var (
	// ErrPassInProgress is returned by Pass while another pass is scanning.
	ErrPassInProgress = errors.New("scheduler: pass already in progress")

	ErrListContacts   = errors.New("scheduler: failed to list scheduled contacts")
	ErrAlreadyStarted = errors.New("scheduler: already started")
	ErrNotStarted     = errors.New("scheduler: not started")
	ErrInvalidConfig  = errors.New("scheduler: invalid configuration")
)
