package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"bananaserver/internal/logger"
	"bananaserver/internal/models"
	"bananaserver/internal/repository"
	"bananaserver/internal/services/ai"
	"bananaserver/internal/services/imaging"
	"bananaserver/internal/services/storage"

	"github.com/gorilla/websocket"
)

type liveRequest struct {
	Image string `json:"image"`
	Save  bool   `json:"save"`
}

// DetectLiveHandler handles POST /api/detect-live: a JSON body carrying a
// base64 camera frame. A malformed payload surfaces as a server error, only
// a missing image field is a client error.
func DetectLiveHandler(det Detector, up storage.Uploader,
	store repository.DetectionStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req liveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
			writeError(w, http.StatusBadRequest, "No image data provided")
			return
		}

		envelope, errStatus, err := detectFrame(r, &req, det, up, store, log)
		if err != nil {
			writeError(w, errStatus, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, envelope)
	}
}

// detectFrame runs the live-detection pipeline for one frame; shared by the
// HTTP endpoint and the websocket loop.
func detectFrame(r *http.Request, req *liveRequest, det Detector, up storage.Uploader,
	store repository.DetectionStore, log *logger.Logger) (*DetectionEnvelope, int, error) {

	img, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	defer img.Close()

	result, err := det.Detect(img, ai.DefaultInferenceSize)
	if err != nil {
		log.Error("Detection failed: %v", err)
		return nil, http.StatusInternalServerError, err
	}

	var imageURL, docID *string
	if req.Save {
		// Decode the raw payload again for the upload; the Mat above is
		// already consumed by inference.
		raw, decErr := base64.StdEncoding.DecodeString(imaging.StripDataURL(req.Image))
		if decErr != nil {
			log.Warning("Could not re-decode frame for upload: %v", decErr)
		} else {
			imageURL, docID = saveDetection(r.Context(), up, store, raw, result,
				models.SourceLiveCamera, "", log)
		}
	}

	envelope := newEnvelope(result, imageURL, docID, req.Save)
	return &envelope, 0, nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveSocketHandler handles GET /api/live: a websocket stream of camera
// frames. Each text frame carries the same JSON body as /detect-live and is
// answered with the same envelope. The loop ends on the first read error.
func LiveSocketHandler(det Detector, up storage.Uploader,
	store repository.DetectionStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		log.Info("Live detection client connected: %s", r.RemoteAddr)

		for {
			var req liveRequest
			if err := conn.ReadJSON(&req); err != nil {
				log.Info("Live detection client disconnected: %s", r.RemoteAddr)
				return
			}

			if req.Image == "" {
				_ = conn.WriteJSON(map[string]string{
					"status":  "error",
					"message": "No image data provided",
				})
				continue
			}

			envelope, _, err := detectFrame(r, &req, det, up, store, log)
			if err != nil {
				_ = conn.WriteJSON(map[string]string{
					"status":  "error",
					"message": err.Error(),
				})
				continue
			}

			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		}
	}
}
