// Package router wires controllers into the HTTP mux and applies the shared
// middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digipraman/loantrack/internal/http/controllers"
	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	mw "github.com/digipraman/loantrack/internal/http/middlewares"
)

// Deps contains everything the router needs. Metrics is optional; when nil
// the /metrics endpoint is not mounted.
type Deps struct {
	Controllers *controllers.Controllers

	CORSAllowedOrigins []string
	Metrics            http.Handler
}

// New builds the service router. Middlewares run inside the mux so the
// metrics middleware can read the matched route pattern instead of the raw
// path.
func New(deps Deps) http.Handler {
	c := deps.Controllers

	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithCORS(deps.CORSAllowedOrigins),
		mw.WithMetrics(routePattern),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("method not allowed"))
	})

	r.Get("/", c.Health.Root)
	r.Get("/health", c.Health.Health)
	r.Get("/health/db", c.Health.HealthDB)

	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", c.Organizations.List)
		r.Post("/", c.Organizations.Create)
		r.Get("/{id}", c.Organizations.Get)
		r.Patch("/{id}", c.Organizations.Update)
		r.Delete("/{id}", c.Organizations.Delete)
	})

	r.Route("/schemes", func(r chi.Router) {
		r.Get("/", c.Schemes.List)
		r.Post("/", c.Schemes.Create)
		r.Get("/code/{code}", c.Schemes.GetByCode)
		r.Get("/{id}", c.Schemes.Get)
		r.Patch("/{id}", c.Schemes.Update)
		r.Delete("/{id}", c.Schemes.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", c.Users.List)
		r.Post("/", c.Users.Create)
		r.Get("/mobile/{mobile}", c.Users.GetByMobile)
		r.Get("/{id}", c.Users.Get)
		r.Patch("/{id}", c.Users.Update)
		r.Delete("/{id}", c.Users.Delete)
	})

	r.Route("/devices", func(r chi.Router) {
		r.Post("/", c.Devices.Create)
		r.Get("/fingerprint/{fingerprint}", c.Devices.GetByFingerprint)
		r.Get("/user/{user_id}", c.Devices.ListByUser)
		r.Get("/{id}", c.Devices.Get)
		r.Patch("/{id}", c.Devices.Update)
		r.Delete("/{id}", c.Devices.Delete)
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}

// routePattern resolves the matched chi pattern so metrics label by route
// template, never by raw path. Falls back to the raw path for misses.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
