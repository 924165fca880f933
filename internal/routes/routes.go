package routes

import (
	"net/http"

	"bananaserver/internal/config"
	"bananaserver/internal/handlers"
	"bananaserver/internal/logger"
	"bananaserver/internal/middleware"
	"bananaserver/internal/repository"
	"bananaserver/internal/services/storage"
)

// SetupRoutes registers the API endpoints and wraps the mux with the CORS
// and panic-recovery middleware.
func SetupRoutes(cfg *config.Config, det handlers.Detector, up storage.Uploader,
	store repository.DetectionStore, log *logger.Logger) http.Handler {

	mux := http.NewServeMux()

	mux.HandleFunc("/api/test", handlers.TestHandler())
	mux.HandleFunc("/api/predict", handlers.PredictHandler(cfg, det, up, store, log))
	mux.HandleFunc("/api/detect-live", handlers.DetectLiveHandler(det, up, store, log))
	mux.HandleFunc("/api/history", handlers.HistoryHandler(store, log))
	mux.HandleFunc("/api/live", handlers.LiveSocketHandler(det, up, store, log))

	// Root liveness descriptor; everything unmapped falls through to a JSON 404.
	mux.HandleFunc("/", handlers.IndexHandler())

	return middleware.Recover(log)(middleware.CORS(mux))
}
