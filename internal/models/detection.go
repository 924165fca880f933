package models

import (
	"fmt"
	"time"
)

// Source values for a persisted detection record.
const (
	SourceUpload     = "upload"
	SourceLiveCamera = "live_camera"
)

// BoundingBox describes object geometry in source image pixel space.
type BoundingBox struct {
	XMin   int `json:"x_min" firestore:"x_min"`
	YMin   int `json:"y_min" firestore:"y_min"`
	XMax   int `json:"x_max" firestore:"x_max"`
	YMax   int `json:"y_max" firestore:"y_max"`
	Width  int `json:"width" firestore:"width"`
	Height int `json:"height" firestore:"height"`
}

// Detection represents one classified object found in an image.
type Detection struct {
	Class      string      `json:"class" firestore:"class"`
	Confidence float64     `json:"confidence" firestore:"confidence"`
	BBox       BoundingBox `json:"bbox" firestore:"bbox"`
}

// DetectionResult is the outcome of a single inference call.
type DetectionResult struct {
	Detections    []Detection `json:"detections"`
	InferenceTime string      `json:"inference_time"`
	ImageShape    []int       `json:"image_shape,omitempty"` // [height, width]
}

// DetectionRecord is the persisted form of a detection result.
type DetectionRecord struct {
	ID            string      `json:"id,omitempty" firestore:"-"`
	ImageURL      string      `json:"image_url" firestore:"image_url"`
	Detections    []Detection `json:"detections" firestore:"detections"`
	InferenceTime string      `json:"inference_time" firestore:"inference_time"`
	Source        string      `json:"source" firestore:"source"`
	Filename      string      `json:"filename,omitempty" firestore:"filename,omitempty"`
	Timestamp     time.Time   `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	CreatedAt     string      `json:"created_at" firestore:"created_at"`
}

// ClassLabel is the result of resolving a model class index against the
// configured class-name list.
type ClassLabel struct {
	ID    int
	Name  string
	Known bool
}

// LookupClass resolves id against names. An out-of-range id yields an
// unknown label instead of panicking.
func LookupClass(names []string, id int) ClassLabel {
	if id >= 0 && id < len(names) {
		return ClassLabel{ID: id, Name: names[id], Known: true}
	}
	return ClassLabel{ID: id}
}

// String formats the label for the response; unknown ids become "class_<id>".
func (l ClassLabel) String() string {
	if l.Known {
		return l.Name
	}
	return fmt.Sprintf("class_%d", l.ID)
}
