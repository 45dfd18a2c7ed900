// Package httpapi exposes contacts, templates, the send log and the send
// actions over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/outreach/internal/contact"
	"github.com/dmitrymomot/outreach/internal/dispatch"
	"github.com/dmitrymomot/outreach/internal/ledger"
	"github.com/dmitrymomot/outreach/pkg/health"
	"github.com/dmitrymomot/outreach/pkg/logger"
	"github.com/dmitrymomot/outreach/pkg/mailer"
)

const (
	defaultRequestTimeout = 60 * time.Second
	maxBodyBytes          = 1 << 20
)

// Dispatcher sends and previews email.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Result
	Prepare(ctx context.Context, req dispatch.Request) (dispatch.Message, dispatch.Result)
}

// Deps are the collaborators the API serves.
type Deps struct {
	Contacts   contact.Store
	Templates  mailer.TemplateStore
	Ledger     ledger.Ledger
	Dispatcher Dispatcher
	Logger     *slog.Logger
	// Ready are the readiness checks served on /health/ready.
	Ready health.Checks
	// TestRecipient receives send-test emails.
	TestRecipient string
}

// API is the HTTP surface.
type API struct {
	deps   Deps
	log    *slog.Logger
	router chi.Router
}

// handlerFunc is a handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// New builds the router.
func New(deps Deps) *API {
	log := deps.Logger
	if log == nil {
		log = logger.NewNope()
	}
	a := &API{deps: deps, log: log.With(slog.String("component", "http"))}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.log))
	r.Use(recoverer(a.log))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(deps.Ready, health.WithLogger(a.log)))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(defaultRequestTimeout))

		r.Get("/contacts", a.handle(a.listContacts))
		r.Post("/contacts", a.handle(a.createContact))
		r.Get("/contacts/{id}", a.handle(a.getContact))
		r.Patch("/contacts/{id}", a.handle(a.updateContact))
		r.Delete("/contacts/{id}", a.handle(a.deleteContact))

		r.Get("/templates", a.handle(a.listTemplates))
		r.Get("/logs", a.handle(a.listLogs))

		r.Get("/email-preview/{id}", a.handle(a.previewEmail))
		r.Post("/send-test/{id}", a.handle(a.sendTest))
		r.Post("/send/{id}", a.handle(a.send))
	})

	a.router = r
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			a.log.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
		writeError(w, r, he)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, he *HTTPError) {
	body := *he
	body.RequestID = w.Header().Get("X-Request-ID")
	if body.RequestID == "" {
		body.RequestID = r.Header.Get("X-Request-ID")
	}
	writeJSON(w, he.Code, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF && allowEmpty {
			return nil
		}
		return ErrBadRequest("Invalid JSON body", WithErrorCode("invalid_json"), WithError(err))
	}
	return nil
}
