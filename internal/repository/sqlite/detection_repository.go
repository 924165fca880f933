package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bananaserver/internal/models"
)

// createdAtLayout is fixed-width (no dropped fractional digits, always UTC)
// so the lexicographic ORDER BY on the created_at column is chronological.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DetectionRepository implements repository.DetectionStore for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Save inserts a detection record and returns its row id as the document id.
func (r *DetectionRepository) Save(ctx context.Context, rec *models.DetectionRecord) (string, error) {
	r.db.Lock()
	defer r.db.Unlock()

	detectionsJSON, err := json.Marshal(rec.Detections)
	if err != nil {
		return "", fmt.Errorf("failed to marshal detections: %w", err)
	}

	created := time.Now().UTC()
	if rec.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err == nil {
			created = parsed.UTC()
		}
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = created
	}
	rec.CreatedAt = created.Format(createdAtLayout)

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO detections (image_url, source, filename, detections, inference_time, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ImageURL, rec.Source, rec.Filename, string(detectionsJSON), rec.InferenceTime, rec.Timestamp, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert detection record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to read insert id: %w", err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	return rec.ID, nil
}

// ListRecent returns up to limit records ordered newest-first.
func (r *DetectionRepository) ListRecent(ctx context.Context, limit int) ([]models.DetectionRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, image_url, source, filename, detections, inference_time, timestamp, created_at
		FROM detections
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection records: %w", err)
	}
	defer rows.Close()

	var records []models.DetectionRecord
	for rows.Next() {
		var rec models.DetectionRecord
		var id int64
		var detectionsJSON string

		if err := rows.Scan(&id, &rec.ImageURL, &rec.Source, &rec.Filename,
			&detectionsJSON, &rec.InferenceTime, &rec.Timestamp, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection record: %w", err)
		}

		if err := json.Unmarshal([]byte(detectionsJSON), &rec.Detections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detections: %w", err)
		}

		rec.ID = strconv.FormatInt(id, 10)
		records = append(records, rec)
	}

	return records, rows.Err()
}
