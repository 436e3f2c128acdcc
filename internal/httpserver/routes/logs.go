package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerLogs) }

func registerLogs(r chi.Router, d deps.Deps) {
	r.With(timed(d)...).Route("/api/logs", func(r chi.Router) {
		r.Get("/", handlers.ListLogs(d))
		r.Delete("/", handlers.ClearLogs(d))
		if d.Archive != nil {
			r.Get("/archive", handlers.ArchivedLogs(d))
		}
	})
}
