package handlers

import (
	"context"
	"time"

	"bananaserver/internal/logger"
	"bananaserver/internal/models"
	"bananaserver/internal/repository"
	"bananaserver/internal/services/storage"

	"gocv.io/x/gocv"
)

// Detector is the inference dependency of the request handlers.
type Detector interface {
	Detect(img gocv.Mat, size int) (*models.DetectionResult, error)
}

// saveDetection performs the best-effort side save: upload the image bytes,
// then persist a detection record referencing the uploaded URL. Any failure
// is logged and degrades the response (nil url/id); it never fails the
// request. The record is only written when the upload succeeded, matching
// the upload-then-persist order of the save path.
func saveDetection(ctx context.Context, up storage.Uploader, store repository.DetectionStore,
	data []byte, result *models.DetectionResult, source, filename string, log *logger.Logger) (imageURL, docID *string) {

	if up == nil {
		log.Warning("Save requested but no image uploader is configured")
		return nil, nil
	}

	uploaded := up.Upload(ctx, data)
	if !uploaded.Success {
		log.Warning("Image upload failed, skipping save: %s", uploaded.Error)
		return nil, nil
	}
	imageURL = &uploaded.URL

	if store == nil {
		log.Warning("Save requested but no detection store is configured")
		return imageURL, nil
	}

	rec := &models.DetectionRecord{
		ImageURL:      uploaded.URL,
		Detections:    result.Detections,
		InferenceTime: result.InferenceTime,
		Source:        source,
		Filename:      filename,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	id, err := store.Save(ctx, rec)
	if err != nil {
		log.Warning("Failed to persist detection record: %v", err)
		return imageURL, nil
	}

	return imageURL, &id
}
