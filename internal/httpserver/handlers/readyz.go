package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz reports ready once the first service fetch has succeeded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case d.Registry.Loading():
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: "initial fetch in progress"})
		case d.Registry.LastApplied().IsZero():
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: d.Registry.LastError()})
		default:
			writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
		}
	}
}
