package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/pkg/schedule"
)

func contactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadRequest("Invalid contact id", WithErrorCode("invalid_id"))
	}
	return id, nil
}

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	var f contact.Filter

	if s := q.Get("status"); s != "" {
		f.Status = contact.Status(s)
	}
	if s := q.Get("date"); s != "" {
		d, err := schedule.ParseDate(s)
		if err != nil {
			return ErrBadRequest("Invalid date filter", WithErrorCode("invalid_date"), WithError(err))
		}
		f.Date = &d
	}
	if s := q.Get("time"); s != "" {
		c, err := schedule.ParseClock(s)
		if err != nil {
			return ErrBadRequest("Invalid time filter", WithErrorCode("invalid_time"), WithError(err))
		}
		f.Time = &c
	}

	list, err := a.deps.Contacts.List(r.Context(), f)
	if err != nil {
		return err
	}
	if list == nil {
		list = []contact.Contact{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func (a *API) getContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}
	c, err := a.deps.Contacts.Get(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

func (a *API) createContact(w http.ResponseWriter, r *http.Request) error {
	var c contact.Contact
	if err := decodeJSON(r, &c, false); err != nil {
		return err
	}
	c.ID = 0

	created, err := a.deps.Contacts.Create(r.Context(), c)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, created)
	return nil
}

func (a *API) updateContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}
	var p contact.Patch
	if err := decodeJSON(r, &p, false); err != nil {
		return err
	}

	updated, err := a.deps.Contacts.Update(r.Context(), id, p)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, updated)
	return nil
}

// deleteContact removes the contact only. Its send history stays.
func (a *API) deleteContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}
	if err := a.deps.Contacts.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
