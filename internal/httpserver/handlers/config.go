package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/mdnspanel/internal/document"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

// ExportConfig returns the backend's configuration document, as JSON or,
// with ?format=yaml, YAML.
func ExportConfig(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := document.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, d.Logger, "export_config", err)
			return
		}

		serialized, err := d.Registry.ExportAll(r.Context())
		if err != nil {
			writeError(w, d.Logger, "export_config", err)
			return
		}

		body, contentType, err := renderDocument(serialized, format)
		if err != nil {
			writeError(w, d.Logger, "export_config", err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="mdns-config.`+string(format)+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

// renderDocument re-encodes the backend's JSON export in the requested format.
func renderDocument(serialized string, format document.Format) ([]byte, string, error) {
	if format == document.FormatJSON {
		return []byte(serialized), "application/json", nil
	}
	doc, err := document.Parse([]byte(serialized))
	if err != nil {
		return nil, "", domain.Backendf("backend exported an unreadable document: %v", domain.MessageOf(err))
	}
	body, err := document.Encode(doc, format)
	if err != nil {
		return nil, "", err
	}
	return body, "application/yaml", nil
}

// ImportConfig replaces the backend configuration with the document in the
// request body (JSON or YAML).
func ImportConfig(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, d.Logger, "import_config", domain.Validationf("document exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, d.Logger, "import_config", domain.Validationf("failed to read document: %v", err))
			return
		}

		if err := d.Registry.ImportAll(r.Context(), string(body)); err != nil {
			writeError(w, d.Logger, "import_config", err)
			return
		}
		writeJSON(w, http.StatusOK, d.Registry.Services())
	}
}
