package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"
	"bananaserver/internal/repository"
	"bananaserver/internal/services/ai"
	"bananaserver/internal/services/imaging"
	"bananaserver/internal/services/storage"

	"bananaserver/internal/models"
)

// PredictHandler handles POST /api/predict: a multipart image upload, run
// through the detector, with an optional best-effort save.
func PredictHandler(cfg *config.Config, det Detector, up storage.Uploader,
	store repository.DetectionStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)

		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No image file provided")
			return
		}
		defer file.Close()

		if header.Filename == "" {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}

		// Validated before anything touches the filesystem.
		if !allowedFile(header.Filename, cfg.AllowedExts) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid file type. Allowed: %s", strings.Join(cfg.AllowedExts, ", ")))
			return
		}

		uploadPath, err := saveUploadedFile(file, header.Filename, cfg.UploadDir)
		if err != nil {
			log.Error("Failed to persist upload: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// Removed on every exit path, including panics unwinding through here.
		defer os.Remove(uploadPath)

		data, err := os.ReadFile(uploadPath)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		img, err := imaging.DecodeUpload(data)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer img.Close()

		result, err := det.Detect(img, ai.DefaultInferenceSize)
		if err != nil {
			log.Error("Detection failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		shouldSave := strings.EqualFold(r.FormValue("save"), "true")

		var imageURL, docID *string
		if shouldSave {
			imageURL, docID = saveDetection(r.Context(), up, store, data, result,
				models.SourceUpload, header.Filename, log)
		}

		writeJSON(w, http.StatusOK, newEnvelope(result, imageURL, docID, shouldSave))
	}
}
