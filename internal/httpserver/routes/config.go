package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerConfig) }

func registerConfig(r chi.Router, d deps.Deps) {
	r.With(timed(d)...).Route("/api/config", func(r chi.Router) {
		r.Get("/export", handlers.ExportConfig(d))
		r.Post("/import", handlers.ImportConfig(d))
	})
}
