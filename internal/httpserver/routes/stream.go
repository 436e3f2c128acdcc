package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/handlers"
)

func init() { Register(registerStream) }

// The stream outlives any request deadline, so it only gets the access guards.
func registerStream(r chi.Router, d deps.Deps) {
	r.With(guarded(d)...).Get("/api/stream", handlers.Stream(d))
}
