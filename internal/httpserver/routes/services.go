package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerServices) }

func registerServices(r chi.Router, d deps.Deps) {
	r.With(timed(d)...).Route("/api/services", func(r chi.Router) {
		r.Get("/", handlers.ListServices(d))
		r.Post("/", handlers.AddService(d))
		r.Get("/summary", handlers.ServiceSummary(d))
		r.Post("/start-all", handlers.StartAll(d))
		r.Post("/stop-all", handlers.StopAll(d))
		r.Get("/{id}", handlers.GetService(d))
		r.Put("/{id}", handlers.UpdateService(d))
		r.Delete("/{id}", handlers.DeleteService(d))
		r.Post("/{id}/toggle", handlers.ToggleService(d))
	})
}
