// Package httpapi is the HTTP transport: routing, identity resolution,
// policy enforcement at each endpoint and the JSON error envelope.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"clientdesk.org/api/spec"
	"clientdesk.org/internal/audit"
	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/clients"
	"clientdesk.org/internal/drafts"
	"clientdesk.org/internal/obs"
	"clientdesk.org/internal/store"
)

const maxBodyBytes = 1 << 20

// ReadyProbe reports whether the service can take traffic.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps wires the API to the rest of the service.
type Deps struct {
	Tokens   *auth.TokenService
	Policy   *auth.Policy
	Users    store.UserStore
	Clients  *clients.Service
	Drafts   *drafts.Service
	Trail    *audit.Trail
	Ready    ReadyProbe
	Version  string
	TokenTTL time.Duration

	CORSOrigins []string
	LoginRate   float64
	LoginBurst  int
}

// API is the HTTP layer.
type API struct {
	router     chi.Router
	tokens     *auth.TokenService
	policy     *auth.Policy
	users      store.UserStore
	clients    *clients.Service
	drafts     *drafts.Service
	trail      *audit.Trail
	readyProbe ReadyProbe
	version    string
	tokenTTL   time.Duration
}

// New builds the router. Identity resolution wraps everything; enforcement
// happens per endpoint through require.
func New(d Deps) *API {
	a := &API{
		router:     chi.NewRouter(),
		tokens:     d.Tokens,
		policy:     d.Policy,
		users:      d.Users,
		clients:    d.Clients,
		drafts:     d.Drafts,
		trail:      d.Trail,
		readyProbe: d.Ready,
		version:    d.Version,
		tokenTTL:   d.TokenTTL,
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	loginRate, loginBurst := d.LoginRate, d.LoginBurst
	if loginRate <= 0 {
		loginRate = 1
	}
	if loginBurst <= 0 {
		loginBurst = 5
	}

	r := a.router
	r.Use(RequestID)
	r.Use(LoggingJSON)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		MaxAge:         600,
	}))
	r.Use(MaxBodyBytes(maxBodyBytes))
	r.Use(a.withAuth)

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Get("/openapi.yaml", a.OpenAPISpec)
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(RateLimit(loginRate, loginBurst)).Post("/auth/login", a.Login)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", a.ListClients)
			r.Get("/search", a.SearchClients)
			r.Get("/count", a.CountClients)
			r.Post("/", a.CreateClient)
			r.Get("/{id}", a.GetClient)
			r.Put("/{id}", a.UpdateClient)
			r.Delete("/{id}", a.DeleteClient)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", a.ListDrafts)
			r.Post("/", a.CreateDraft)
			r.Get("/{id}", a.GetDraft)
			r.Put("/{id}", a.UpdateDraft)
			r.Delete("/{id}", a.DeleteDraft)
		})

		r.Get("/logs", a.ListLogs)
	})

	return a
}

// Handler returns the full middleware-wrapped handler.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.router)
}

// require enforces the policy for op. On failure it writes the error response
// and returns ok=false; handlers return immediately in that case.
func (a *API) require(w http.ResponseWriter, r *http.Request, op string) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	var d auth.Decision
	if !ok {
		d = a.policy.Authorize(nil, op)
	} else {
		d = a.policy.Authorize(&identity, op)
	}
	switch d.Outcome {
	case auth.Allow:
		return identity, true
	case auth.Unauthenticated:
		writeError(w, http.StatusUnauthorized, labelUnauthorized, "Authentication required")
	default:
		msg := d.Message
		if msg == "" {
			msg = "Insufficient permissions"
		}
		writeError(w, http.StatusForbidden, labelForbidden, msg)
	}
	return auth.Identity{}, false
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "clientdesk-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}
