package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
)

// HTTPError is an error with everything needed to render a JSON response.
type HTTPError struct {
	// Err is the underlying error, logged but never shown to clients.
	Err error `json:"-"`

	Message   string `json:"error"`
	ErrorCode string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Code      int    `json:"-"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// toHTTPError maps domain errors to responses. Unknown errors become 500.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, contact.ErrNotFound):
		return ErrNotFound("Contact not found", WithError(err))
	case errors.Is(err, contact.ErrInvalidStatus):
		return ErrBadRequest("Invalid status", WithErrorCode("invalid_status"), WithError(err))
	case errors.Is(err, contact.ErrEmptyPatch):
		return ErrBadRequest("No fields to update", WithErrorCode("empty_patch"), WithError(err))
	}
	return ErrInternal("Internal server error", WithError(err))
}

// resultError maps a failed or skipped dispatch to a response.
// It returns nil for results that should be reported as success.
func resultError(res dispatch.Result) *HTTPError {
	opts := []HTTPErrorOption{WithErrorCode(string(res.Reason)), WithError(res.Err)}

	switch res.Reason {
	case dispatch.ReasonNone, dispatch.ReasonAlreadySent:
		return nil
	case dispatch.ReasonIncompleteContact:
		return ErrUnprocessable("Contact needs email, first name and template", opts...)
	case dispatch.ReasonTemplateNotFound:
		return ErrNotFound("Template not found", opts...)
	case dispatch.ReasonMissingSubject:
		return ErrUnprocessable("No subject configured for template", opts...)
	case dispatch.ReasonInFlight:
		return ErrConflict("A send to this contact is already in progress", opts...)
	case dispatch.ReasonTransport:
		return NewHTTPError(http.StatusBadGateway, "Email provider rejected the message", opts...)
	case dispatch.ReasonLedgerWrite:
		return ErrInternal("Email was sent but could not be recorded", opts...)
	case dispatch.ReasonTemplateUnavailable, dispatch.ReasonClaim, dispatch.ReasonLedgerRead:
		return NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable", opts...)
	}
	return ErrInternal("Internal server error", opts...)
}
