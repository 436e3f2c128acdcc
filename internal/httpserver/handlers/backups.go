package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	redisstore "github.com/MrSnakeDoc/mdnspanel/internal/store/redis"
)

func ListBackups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backups, err := d.Archive.ListBackups(r.Context())
		if err != nil {
			writeError(w, d.Logger, "list_backups", domain.Transportf("%v", err))
			return
		}
		writeJSON(w, http.StatusOK, backups)
	}
}

// RestoreBackup imports a stored backup through the registry, like any
// other import.
func RestoreBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := d.Archive.GetBackup(r.Context(), id)
		if err != nil {
			if errors.Is(err, redisstore.ErrNoBackup) {
				writeError(w, d.Logger, "restore_backup", domain.NotFoundf("backup not found: %s", id))
				return
			}
			writeError(w, d.Logger, "restore_backup", domain.Transportf("%v", err))
			return
		}

		if err := d.Registry.ImportAll(r.Context(), b.Serialized); err != nil {
			writeError(w, d.Logger, "restore_backup", err)
			return
		}
		d.Logger.Info("configuration restored from backup",
			logger.String("backup_id", id))
		writeJSON(w, http.StatusOK, d.Registry.Services())
	}
}
