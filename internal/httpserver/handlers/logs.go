package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
)

const defaultArchiveLimit = 200

type logsResponse struct {
	Filter  domain.LevelFilter `json:"filter"`
	Total   int                `json:"total"`
	Entries []domain.LogEntry  `json:"entries"`
}

// ListLogs returns buffered entries, oldest first, filtered by ?level=.
// The filter applies to this response only.
func ListLogs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := domain.ParseLevelFilter(r.URL.Query().Get("level"))
		if err != nil {
			writeError(w, d.Logger, "get_logs", err)
			return
		}
		all := d.EventLog.All()
		writeJSON(w, http.StatusOK, logsResponse{
			Filter:  filter,
			Total:   len(all),
			Entries: domain.FilterEntries(all, filter),
		})
	}
}

// ClearLogs clears the backend log and then the local buffer.
func ClearLogs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.EventLog.Clear(r.Context()); err != nil {
			writeError(w, d.Logger, "clear_logs", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ArchivedLogs reads the Redis archive, ?limit= entries (default 200).
func ArchivedLogs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultArchiveLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, d.Logger, "archived_logs", domain.Validationf("limit must be a positive integer"))
				return
			}
			limit = n
		}

		entries, err := d.Archive.RecentLogEntries(r.Context(), limit)
		if err != nil {
			writeError(w, d.Logger, "archived_logs", domain.Transportf("%v", err))
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
