package firestore

import (
	"context"
	"fmt"
	"time"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"
	"bananaserver/internal/models"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const detectionsCollection = "detections"

// Store implements repository.DetectionStore on Cloud Firestore via the
// Firebase Admin SDK.
type Store struct {
	client *firestore.Client
	logger *logger.Logger
}

// New initializes the Firebase app and the Firestore client from the
// configured service-account credentials.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Store, error) {
	if cfg.FirebaseCredentials == "" {
		return nil, fmt.Errorf("firebase credentials not configured")
	}

	opts := option.WithCredentialsFile(cfg.FirebaseCredentials)
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	logger.Info("Firebase initialized (project %s)", cfg.FirebaseProjectID)
	return &Store{client: client, logger: logger}, nil
}

// Save writes a record to the detections collection. The timestamp field
// is populated by the server (serverTimestamp tag on the model).
func (s *Store) Save(ctx context.Context, rec *models.DetectionRecord) (string, error) {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	ref, _, err := s.client.Collection(detectionsCollection).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to save detection record: %w", err)
	}

	rec.ID = ref.ID
	return ref.ID, nil
}

// ListRecent returns up to limit records ordered by server timestamp,
// newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.DetectionRecord, error) {
	iter := s.client.Collection(detectionsCollection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var records []models.DetectionRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read detection records: %w", err)
		}

		var rec models.DetectionRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode detection record %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		records = append(records, rec)
	}

	return records, nil
}

// Close releases the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}
