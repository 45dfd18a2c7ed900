package contact

import "errors"

var (
	ErrNotFound      = errors.New("contact: not found")
	ErrInvalidStatus = errors.New("contact: invalid status")
	ErrEmptyPatch    = errors.New("contact: no fields to update")
	ErrQuery         = errors.New("contact: query failed")
)
