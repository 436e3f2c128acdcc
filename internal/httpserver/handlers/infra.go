package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Count       *int   `json:"count,omitempty"`
	LastRefresh string `json:"last_refresh,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each component behind the panel.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := len(d.Registry.Services())
		logs := d.EventLog.Len()
		ifaces := len(d.Interfaces.Interfaces())

		components := map[string]componentStatus{
			"registry": {
				OK:          !d.Registry.LastApplied().IsZero() && d.Registry.LastError() == "",
				Count:       &services,
				LastRefresh: formatTime(d.Registry.LastApplied()),
				Mode:        d.Transport,
				Error:       d.Registry.LastError(),
			},
			"eventlog": {
				OK:    true,
				Count: &logs,
			},
			"interfaces": {
				OK:          !d.Interfaces.LastRefresh().IsZero(),
				Count:       &ifaces,
				LastRefresh: formatTime(d.Interfaces.LastRefresh()),
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func determineMode(components map[string]componentStatus) string {
	if reg, ok := components["registry"]; ok && !reg.OK {
		return "critical" // no usable service list
	}
	for _, name := range []string{"interfaces", "redis"} {
		if c, ok := components[name]; ok && !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Archive == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "no-archive-no-backups",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Archive.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "archive-and-backups-unavailable",
			Error:  err.Error(),
		}
	}

	status := componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "archive-and-backups-enabled",
	}
	if n, err := d.Archive.ArchiveLength(ctx); err == nil {
		archived := int(n)
		status.Count = &archived
	}
	return status
}
