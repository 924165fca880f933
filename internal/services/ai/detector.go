package ai

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sync"
	"time"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"
	"bananaserver/internal/models"

	"gocv.io/x/gocv"
)

// DefaultInferenceSize is the square input resolution fed to the network.
const DefaultInferenceSize = 640

// ErrModelLoad marks a failure to load the model weights. It is sticky:
// once loading fails the detector keeps returning it for the process
// lifetime instead of retrying per request.
var ErrModelLoad = errors.New("model load failed")

// Detector wraps one long-lived detection network. The net is loaded at
// most once (lazily, or eagerly via Warm) and shared across all requests.
// gocv nets are not documented as safe for concurrent Forward calls, so
// inference on the shared net is serialized with a mutex.
type Detector struct {
	modelPath     string
	confThreshold float32
	iouThreshold  float32
	classNames    []string
	logger        *logger.Logger

	once    sync.Once
	loadErr error
	net     gocv.Net
	mu      sync.Mutex
}

// NewDetector creates a Detector. The network is not loaded yet; loading
// happens on the first Detect or Warm call.
func NewDetector(cfg *config.Config, logger *logger.Logger) *Detector {
	return &Detector{
		modelPath:     cfg.ModelPath,
		confThreshold: float32(cfg.ConfidenceThreshold),
		iouThreshold:  float32(cfg.IoUThreshold),
		classNames:    cfg.ClassNames,
		logger:        logger,
	}
}

// Warm loads the network eagerly so weight problems surface at startup
// instead of on the first request.
func (d *Detector) Warm() error {
	return d.load()
}

// load initializes the network exactly once. Loading takes seconds, so it
// must never happen per request.
func (d *Detector) load() error {
	d.once.Do(func() {
		if _, err := os.Stat(d.modelPath); err != nil {
			d.loadErr = fmt.Errorf("%w: model file not found: %s", ErrModelLoad, d.modelPath)
			return
		}

		net := gocv.ReadNetFromONNX(d.modelPath)
		if net.Empty() {
			d.loadErr = fmt.Errorf("%w: failed to read network from %s", ErrModelLoad, d.modelPath)
			return
		}

		if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
			d.loadErr = fmt.Errorf("%w: %v", ErrModelLoad, err)
			return
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
			d.loadErr = fmt.Errorf("%w: %v", ErrModelLoad, err)
			return
		}

		d.net = net
		d.logger.Info("Detection model loaded from %s (conf=%.2f, iou=%.2f, classes=%v)",
			d.modelPath, d.confThreshold, d.iouThreshold, d.classNames)
	})
	return d.loadErr
}

// Detect runs the network on img at the given square input size and returns
// detections in source pixel space. Errors here are request-scoped and do
// not affect the shared net.
func (d *Detector) Detect(img gocv.Mat, size int) (*models.DetectionResult, error) {
	if err := d.load(); err != nil {
		return nil, err
	}

	if img.Empty() {
		return nil, errors.New("inference failed: input image is empty")
	}
	if size <= 0 {
		size = DefaultInferenceSize
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	start := time.Now()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	elapsed := time.Since(start)
	d.mu.Unlock()
	defer output.Close()

	if output.Empty() {
		return nil, errors.New("inference failed: network produced no output")
	}

	detections := d.parseOutput(output, img.Cols(), img.Rows(), size)

	return &models.DetectionResult{
		Detections:    detections,
		InferenceTime: formatInferenceTime(elapsed),
		ImageShape:    []int{img.Rows(), img.Cols()},
	}, nil
}

// parseOutput converts raw YOLO output rows [cx, cy, w, h, obj, class...]
// into Detection records scaled to source pixels, applying the confidence
// threshold and non-maximum suppression with the IoU threshold.
func (d *Detector) parseOutput(output gocv.Mat, imgW, imgH, size int) []models.Detection {
	cols := len(d.classNames) + 5
	rows := output.Total() / cols
	out := output.Reshape(1, rows)
	defer out.Close()

	xFactor := float32(imgW) / float32(size)
	yFactor := float32(imgH) / float32(size)

	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int

	for i := 0; i < rows; i++ {
		objectness := out.GetFloatAt(i, 4)
		if objectness < d.confThreshold {
			continue
		}

		classID := 0
		best := float32(0)
		for c := 0; c < len(d.classNames); c++ {
			if s := out.GetFloatAt(i, 5+c); s > best {
				best = s
				classID = c
			}
		}

		confidence := objectness * best
		if confidence < d.confThreshold {
			continue
		}

		cx := out.GetFloatAt(i, 0) * xFactor
		cy := out.GetFloatAt(i, 1) * yFactor
		w := out.GetFloatAt(i, 2) * xFactor
		h := out.GetFloatAt(i, 3) * yFactor

		boxes = append(boxes, image.Rect(
			int(cx-w/2), int(cy-h/2), int(cx+w/2), int(cy+h/2)))
		scores = append(scores, confidence)
		classIDs = append(classIDs, classID)
	}

	if len(boxes) == 0 {
		return []models.Detection{}
	}

	indices := gocv.NMSBoxes(boxes, scores, d.confThreshold, d.iouThreshold)

	detections := make([]models.Detection, 0, len(indices))
	for _, idx := range indices {
		detections = append(detections,
			buildDetection(d.classNames, classIDs[idx], scores[idx], boxes[idx], imgW, imgH))
	}

	return detections
}

// buildDetection clamps a box to image bounds and produces the wire-level
// Detection with rounded confidence and a resolved class name.
func buildDetection(names []string, classID int, confidence float32, box image.Rectangle, imgW, imgH int) models.Detection {
	xMin := clamp(box.Min.X, 0, imgW)
	yMin := clamp(box.Min.Y, 0, imgH)
	xMax := clamp(box.Max.X, xMin, imgW)
	yMax := clamp(box.Max.Y, yMin, imgH)

	return models.Detection{
		Class:      models.LookupClass(names, classID).String(),
		Confidence: math.Round(float64(confidence)*1000) / 1000,
		BBox: models.BoundingBox{
			XMin:   xMin,
			YMin:   yMin,
			XMax:   xMax,
			YMax:   yMax,
			Width:  xMax - xMin,
			Height: yMax - yMin,
		},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// formatInferenceTime renders a duration as milliseconds with one decimal
// place, e.g. "42.3ms".
func formatInferenceTime(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
