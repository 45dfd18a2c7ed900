package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
)

const defaultLogLimit = 500

func (a *API) listTemplates(w http.ResponseWriter, r *http.Request) error {
	list, err := a.deps.Templates.List(r.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []mailer.TemplateInfo{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func (a *API) listLogs(w http.ResponseWriter, r *http.Request) error {
	limit := defaultLogLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return ErrBadRequest("Invalid limit", WithErrorCode("invalid_limit"))
		}
		limit = n
	}

	entries, err := a.deps.Ledger.List(r.Context(), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}
