package handlers

import "net/http"

// TestHandler handles GET /api/test, a quick connectivity check listing the
// available endpoints.
func TestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "API is working!",
			"endpoints": map[string]string{
				"test":        "/api/test",
				"predict":     "/api/predict (POST)",
				"detect_live": "/api/detect-live (POST)",
				"history":     "/api/history",
				"live":        "/api/live (websocket)",
			},
		})
	}
}

// IndexHandler serves the root liveness descriptor and the JSON 404 for
// every unmapped path.
func IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "Endpoint not found",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "running",
			"service": "Banana Detection Backend",
			"version": "1.0.0",
		})
	}
}
