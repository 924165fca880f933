package handlers

import (
	"net/http"

	"bananaserver/internal/logger"
	"bananaserver/internal/models"
	"bananaserver/internal/repository"
)

const defaultHistoryLimit = 50

// HistoryHandler handles GET /api/history?limit=N, returning the most
// recent detection records newest-first.
func HistoryHandler(store repository.DetectionStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if store == nil {
			writeError(w, http.StatusInternalServerError, "Detection history store is not configured")
			return
		}

		limit := atoiDefault(r.URL.Query().Get("limit"), defaultHistoryLimit)

		records, err := store.ListRecent(r.Context(), limit)
		if err != nil {
			log.Error("Failed to list detection history: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if records == nil {
			records = []models.DetectionRecord{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "success",
			"detections": records,
			"count":      len(records),
		})
	}
}
