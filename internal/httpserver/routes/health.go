package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/mw"
)

func init() { Register(registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.Get("/api/infra", handlers.Infra(d))
	if d.Metrics != nil {
		internal.Handle("/metrics", d.Metrics)
	}
}
