package dispatch

import "errors"

var (
	ErrIncompleteContact   = errors.New("dispatch: contact needs email, first name and template")
	ErrTemplateNotFound    = errors.New("dispatch: template not found")
	ErrTemplateUnavailable = errors.New("dispatch: template store unavailable")
	ErrMissingSubject      = errors.New("dispatch: no subject for template")
	ErrTransport           = errors.New("dispatch: transport failed")
	ErrLedgerWrite         = errors.New("dispatch: email sent but not recorded")
	ErrLedgerRead          = errors.New("dispatch: send history unavailable")
	ErrClaim               = errors.New("dispatch: could not claim contact")
)
