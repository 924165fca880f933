package repository

import (
	"context"

	"bananaserver/internal/models"
)

// DetectionStore persists detection records and lists them by recency.
type DetectionStore interface {
	// Save stores a record and returns the store-assigned document id.
	Save(ctx context.Context, rec *models.DetectionRecord) (string, error)
	// ListRecent returns up to limit records, most recently created first.
	ListRecent(ctx context.Context, limit int) ([]models.DetectionRecord, error)
}
