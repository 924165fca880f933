package ai

import (
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"

	"gocv.io/x/gocv"
)

func TestFormatInferenceTime(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{42*time.Millisecond + 300*time.Microsecond, "42.3ms"},
		{1500 * time.Microsecond, "1.5ms"},
		{2 * time.Second, "2000.0ms"},
		{0, "0.0ms"},
	}

	for _, tt := range tests {
		if got := formatInferenceTime(tt.duration); got != tt.expected {
			t.Errorf("formatInferenceTime(%v) = %q, expected %q", tt.duration, got, tt.expected)
		}
	}
}

func TestBuildDetection_Geometry(t *testing.T) {
	names := []string{"Mentah", "Matang", "Busuk"}

	det := buildDetection(names, 1, 0.8567, image.Rect(10, 20, 110, 220), 640, 480)

	if det.Class != "Matang" {
		t.Errorf("Expected class Matang, got %q", det.Class)
	}

	if det.Confidence != 0.857 {
		t.Errorf("Expected confidence rounded to 0.857, got %v", det.Confidence)
	}

	if det.BBox.XMin != 10 || det.BBox.YMin != 20 || det.BBox.XMax != 110 || det.BBox.YMax != 220 {
		t.Errorf("Unexpected box: %+v", det.BBox)
	}

	if det.BBox.Width != det.BBox.XMax-det.BBox.XMin {
		t.Errorf("Width %d does not match x_max-x_min", det.BBox.Width)
	}
	if det.BBox.Height != det.BBox.YMax-det.BBox.YMin {
		t.Errorf("Height %d does not match y_max-y_min", det.BBox.Height)
	}
}

func TestBuildDetection_ClampsToImageBounds(t *testing.T) {
	names := []string{"Mentah"}

	det := buildDetection(names, 0, 0.9, image.Rect(-20, -10, 700, 500), 640, 480)

	if det.BBox.XMin != 0 || det.BBox.YMin != 0 {
		t.Errorf("Expected mins clamped to 0, got %+v", det.BBox)
	}
	if det.BBox.XMax != 640 || det.BBox.YMax != 480 {
		t.Errorf("Expected maxes clamped to image size, got %+v", det.BBox)
	}
	if det.BBox.XMax < det.BBox.XMin || det.BBox.YMax < det.BBox.YMin {
		t.Errorf("Box invariant violated: %+v", det.BBox)
	}
	if det.BBox.Width != 640 || det.BBox.Height != 480 {
		t.Errorf("Expected full-image dimensions, got %+v", det.BBox)
	}
}

func TestBuildDetection_UnknownClassFallback(t *testing.T) {
	det := buildDetection([]string{"Mentah"}, 7, 0.5, image.Rect(0, 0, 10, 10), 100, 100)

	if det.Class != "class_7" {
		t.Errorf("Expected fallback label class_7, got %q", det.Class)
	}
}

func TestDetect_MissingWeightsIsStickyModelLoadError(t *testing.T) {
	cfg := &config.Config{
		ModelPath:           filepath.Join(t.TempDir(), "missing.onnx"),
		ConfidenceThreshold: 0.5,
		IoUThreshold:        0.45,
		ClassNames:          []string{"Mentah", "Matang", "Busuk"},
		LogDirectory:        t.TempDir(),
	}

	det := NewDetector(cfg, logger.NewLogger(cfg))

	img := gocv.NewMatWithSize(32, 32, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, err := det.Detect(img, DefaultInferenceSize)
	if err == nil {
		t.Fatal("Expected error for missing weights")
	}
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("Expected ErrModelLoad, got %v", err)
	}

	// Load failures must not be retried per request.
	_, second := det.Detect(img, DefaultInferenceSize)
	if !errors.Is(second, ErrModelLoad) {
		t.Errorf("Expected sticky ErrModelLoad on second call, got %v", second)
	}

	if warmErr := det.Warm(); !errors.Is(warmErr, ErrModelLoad) {
		t.Errorf("Expected Warm to report the same load error, got %v", warmErr)
	}
}
