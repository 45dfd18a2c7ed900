package ledger

import "errors"

var (
	ErrInvalidEntry = errors.New("ledger: entry needs recipient, template and timestamp")
	ErrWrite        = errors.New("ledger: append failed")
	ErrRead         = errors.New("ledger: query failed")
)
