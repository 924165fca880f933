package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bananaserver/internal/models"
)

// DetectionEnvelope is the stable response shape shared by the predict and
// detect-live endpoints.
type DetectionEnvelope struct {
	Status        string             `json:"status"`
	Timestamp     string             `json:"timestamp"`
	ImageURL      *string            `json:"image_url"`
	Detections    []models.Detection `json:"detections"`
	Count         int                `json:"count"`
	InferenceTime string             `json:"inference_time"`
	Saved         bool               `json:"saved"`
	FirebaseDocID *string            `json:"firebase_doc_id"`
}

// newEnvelope assembles the response envelope. It is a pure function of its
// inputs; imageURL and docID stay null unless the best-effort save produced
// them.
func newEnvelope(result *models.DetectionResult, imageURL, docID *string, saved bool) DetectionEnvelope {
	return DetectionEnvelope{
		Status:        "success",
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		ImageURL:      imageURL,
		Detections:    result.Detections,
		Count:         len(result.Detections),
		InferenceTime: result.InferenceTime,
		Saved:         saved,
		FirebaseDocID: docID,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// atoiDefault parses s as a positive integer, falling back to def.
func atoiDefault(s string, def int) int {
	if value, err := strconv.Atoi(s); err == nil && value > 0 {
		return value
	}
	return def
}
