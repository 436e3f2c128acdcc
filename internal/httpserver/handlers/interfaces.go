package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
)

type interfacesResponse struct {
	Interfaces  []domain.NetworkInterface `json:"interfaces"`
	LastRefresh *time.Time                `json:"lastRefresh,omitempty"`
}

func listInterfaces(d deps.Deps) interfacesResponse {
	resp := interfacesResponse{Interfaces: d.Interfaces.Interfaces()}
	if t := d.Interfaces.LastRefresh(); !t.IsZero() {
		resp.LastRefresh = &t
	}
	return resp
}

func ListInterfaces(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listInterfaces(d))
	}
}

// RefreshInterfaces refetches the interface list. On failure the previous
// snapshot is kept and the error is returned.
func RefreshInterfaces(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Interfaces.Refresh(r.Context()); err != nil {
			writeError(w, d.Logger, "get_network_interfaces", err)
			return
		}
		writeJSON(w, http.StatusOK, listInterfaces(d))
	}
}

type hostnameResponse struct {
	Hostname string `json:"hostname"`
}

func HostName(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := d.Interfaces.HostName(r.Context())
		if err != nil {
			writeError(w, d.Logger, "get_hostname", err)
			return
		}
		writeJSON(w, http.StatusOK, hostnameResponse{Hostname: name})
	}
}
