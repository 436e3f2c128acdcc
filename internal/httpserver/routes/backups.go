package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerBackups) }

func registerBackups(r chi.Router, d deps.Deps) {
	if d.Archive == nil {
		return
	}
	r.With(timed(d)...).Route("/api/backups", func(r chi.Router) {
		r.Get("/", handlers.ListBackups(d))
		r.Post("/{id}/restore", handlers.RestoreBackup(d))
	})
}
