package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"bananaserver/internal/models"
)

func testRepo(t *testing.T) *DetectionRepository {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewDetectionRepository(db)
}

func sampleRecord(i int) *models.DetectionRecord {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
	return &models.DetectionRecord{
		ImageURL: fmt.Sprintf("https://example.com/img_%d.jpg", i),
		Detections: []models.Detection{
			{
				Class:      "Matang",
				Confidence: 0.912,
				BBox:       models.BoundingBox{XMin: 1, YMin: 2, XMax: 11, YMax: 22, Width: 10, Height: 20},
			},
		},
		InferenceTime: "42.3ms",
		Source:        models.SourceUpload,
		Filename:      fmt.Sprintf("banana_%d.jpg", i),
		Timestamp:     created,
		CreatedAt:     created.Format(time.RFC3339Nano),
	}
}

func TestDetectionRepository_SaveAssignsID(t *testing.T) {
	repo := testRepo(t)

	rec := sampleRecord(0)
	id, err := repo.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if id == "" {
		t.Error("Expected non-empty document id")
	}
	if rec.ID != id {
		t.Errorf("Expected record id %q to match returned id %q", rec.ID, id)
	}
}

func TestDetectionRepository_RoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	original := sampleRecord(1)
	if _, err := repo.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.ImageURL != original.ImageURL {
		t.Errorf("Expected image url %q, got %q", original.ImageURL, got.ImageURL)
	}
	if got.Source != models.SourceUpload {
		t.Errorf("Expected source upload, got %q", got.Source)
	}
	if got.InferenceTime != "42.3ms" {
		t.Errorf("Expected inference time preserved, got %q", got.InferenceTime)
	}
	if len(got.Detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(got.Detections))
	}

	det := got.Detections[0]
	if det.Class != "Matang" || det.Confidence != 0.912 {
		t.Errorf("Detection did not round-trip: %+v", det)
	}
	if det.BBox.Width != 10 || det.BBox.Height != 20 {
		t.Errorf("Bounding box did not round-trip: %+v", det.BBox)
	}
}

func TestDetectionRepository_ListRecentLimitAndOrder(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Save(ctx, sampleRecord(i)); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected exactly 2 records, got %d", len(records))
	}

	// Newest first: record 4, then record 3.
	if records[0].Filename != "banana_4.jpg" {
		t.Errorf("Expected newest record first, got %q", records[0].Filename)
	}
	if records[1].Filename != "banana_3.jpg" {
		t.Errorf("Expected second-newest record next, got %q", records[1].Filename)
	}
}

func TestDetectionRepository_ListRecentOrdersWithinSameSecond(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	// RFC3339Nano drops trailing zeros, so a whole-second creation time
	// ("...12:00:00Z") would sort after a later fractional one in the same
	// second ("...12:00:00.5Z") if stored verbatim. The repository must
	// normalize to a fixed-width form before ordering on the column.
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	newer := sampleRecord(0)
	newer.Filename = "newer.jpg"
	newer.Timestamp = base.Add(500 * time.Millisecond)
	newer.CreatedAt = newer.Timestamp.Format(time.RFC3339Nano)
	if _, err := repo.Save(ctx, newer); err != nil {
		t.Fatalf("Save newer failed: %v", err)
	}

	older := sampleRecord(0)
	older.Filename = "older.jpg"
	older.Timestamp = base
	older.CreatedAt = base.Format(time.RFC3339Nano)
	if _, err := repo.Save(ctx, older); err != nil {
		t.Fatalf("Save older failed: %v", err)
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Filename != "newer.jpg" {
		t.Errorf("Expected chronologically newest record first, got %q then %q (created_at %q vs %q)",
			records[0].Filename, records[1].Filename, records[0].CreatedAt, records[1].CreatedAt)
	}

	// The normalized form must still be a valid RFC3339 timestamp on the wire.
	for _, rec := range records {
		if _, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err != nil {
			t.Errorf("Stored created_at %q is not RFC3339: %v", rec.CreatedAt, err)
		}
	}
}

func TestDetectionRepository_ListRecentEmpty(t *testing.T) {
	repo := testRepo(t)

	records, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}
