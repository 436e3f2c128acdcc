package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerInterfaces) }

func registerInterfaces(r chi.Router, d deps.Deps) {
	g := r.With(timed(d)...)
	g.Get("/api/interfaces", handlers.ListInterfaces(d))
	g.Post("/api/interfaces/refresh", handlers.RefreshInterfaces(d))
	g.Get("/api/hostname", handlers.HostName(d))
}
