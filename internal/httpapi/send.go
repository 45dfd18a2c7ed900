package httpapi

import (
	"net/http"

	"github.com/dmitrymomot/outreach/internal/dispatch"
)

type sendRequest struct {
	CustomHTML string `json:"customHtml"`
}

type sendResponse struct {
	Result  dispatch.Result `json:"result"`
	Success bool            `json:"success"`
}

// previewEmail renders the contact's template as text/html. Nothing is sent.
func (a *API) previewEmail(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}
	c, err := a.deps.Contacts.Get(r.Context(), id)
	if err != nil {
		return err
	}

	msg, res := a.deps.Dispatcher.Prepare(r.Context(), dispatch.Request{Contact: c})
	if he := resultError(res); he != nil {
		return he
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg.HTML))
	return nil
}

// sendTest sends the rendered template to the configured test address with a
// "Test Email" subject. The send is not recorded.
func (a *API) sendTest(w http.ResponseWriter, r *http.Request) error {
	if a.deps.TestRecipient == "" {
		return ErrUnprocessable("No test recipient configured", WithErrorCode("no_test_recipient"))
	}
	id, err := contactID(r)
	if err != nil {
		return err
	}
	c, err := a.deps.Contacts.Get(r.Context(), id)
	if err != nil {
		return err
	}

	res := a.deps.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Contact:  c,
		To:       a.deps.TestRecipient,
		Subject:  "Test Email: " + c.Normalized().Template,
		NoRecord: true,
	})
	return a.respond(w, res)
}

// send dispatches to the contact now. Explicit sends skip the history check;
// when another send of the same pair is in flight it answers 409 in_flight.
func (a *API) send(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}
	var body sendRequest
	if err := decodeJSON(r, &body, true); err != nil {
		return err
	}
	c, err := a.deps.Contacts.Get(r.Context(), id)
	if err != nil {
		return err
	}

	res := a.deps.Dispatcher.Dispatch(r.Context(), dispatch.Request{
		Contact:      c,
		OverrideHTML: body.CustomHTML,
	})
	return a.respond(w, res)
}

func (a *API) respond(w http.ResponseWriter, res dispatch.Result) error {
	if he := resultError(res); he != nil {
		return he
	}
	writeJSON(w, http.StatusOK, sendResponse{Success: true, Result: res})
	return nil
}
