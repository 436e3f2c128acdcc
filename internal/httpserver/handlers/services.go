package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
)

type serviceRequest struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Port    int               `json:"port"`
	TXT     map[string]string `json:"txt"`
	Enabled bool              `json:"enabled"`
}

func (s serviceRequest) spec() domain.ServiceSpec {
	return domain.ServiceSpec{
		Name:        s.Name,
		ServiceType: s.Type,
		Port:        s.Port,
		Attributes:  s.TXT,
		Enabled:     s.Enabled,
	}
}

type servicesResponse struct {
	Services  []domain.ServiceRecord `json:"services"`
	Loading   bool                   `json:"loading"`
	LastError string                 `json:"lastError,omitempty"`
}

// ListServices returns the current snapshot with the synchronizer status.
func ListServices(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, servicesResponse{
			Services:  d.Registry.Services(),
			Loading:   d.Registry.Loading(),
			LastError: d.Registry.LastError(),
		})
	}
}

func GetService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, ok := d.Registry.Find(id)
		if !ok {
			writeError(w, d.Logger, "get_service", domain.NotFoundf("service not found: %s", id))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func ServiceSummary(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Registry.Summary())
	}
}

// AddService answers with the snapshot applied from the backend's reply.
func AddService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req serviceRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, "add_service", err)
			return
		}
		if err := d.Registry.Add(r.Context(), req.spec()); err != nil {
			writeError(w, d.Logger, "add_service", err)
			return
		}
		writeJSON(w, http.StatusCreated, d.Registry.Services())
	}
}

func UpdateService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req serviceRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, "update_service", err)
			return
		}
		if err := d.Registry.Update(r.Context(), chi.URLParam(r, "id"), req.spec()); err != nil {
			writeError(w, d.Logger, "update_service", err)
			return
		}
		writeJSON(w, http.StatusOK, d.Registry.Services())
	}
}

func DeleteService(d deps.Deps) http.HandlerFunc {
	return byID(d, "delete_service", d.Registry.Remove)
}

func ToggleService(d deps.Deps) http.HandlerFunc {
	return byID(d, "toggle_service", d.Registry.Toggle)
}

func StartAll(d deps.Deps) http.HandlerFunc {
	return bulk(d, "start_all", d.Registry.StartAll)
}

func StopAll(d deps.Deps) http.HandlerFunc {
	return bulk(d, "stop_all", d.Registry.StopAll)
}

func byID(d deps.Deps, op string, fn func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Registry.Services())
	}
}

func bulk(d deps.Deps, op string, fn func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			writeError(w, d.Logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Registry.Services())
	}
}
