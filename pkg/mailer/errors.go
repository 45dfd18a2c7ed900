package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("email must have HTML content")

	// ErrTemplateNotFound indicates the template does not exist in the store.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplateName indicates a name that could escape the store root.
	ErrInvalidTemplateName = errors.New("invalid template name")

	// ErrTemplateStore indicates the store itself failed (I/O, network).
	ErrTemplateStore = errors.New("template store unavailable")

	// ErrSubjectsFile indicates the subject map could not be read or parsed.
	ErrSubjectsFile = errors.New("invalid subjects file")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")
)
