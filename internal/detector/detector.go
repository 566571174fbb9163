// Package detector provides person pose detection interfaces and types
// for the touchless kiosk pipeline.
package detector

import "gocv.io/x/gocv"

// COCO pose keypoint indices as produced by YOLOv8-pose.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16
	NumKeypoints  = 17
)

// Keypoint is a single skeleton point in pixel coordinates with its
// detection confidence.
type Keypoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Conf float64 `json:"conf"`
}

// Result is an immutable snapshot of one inference cycle.
// PointX/PointY are the selected wrist in normalized [0,1] coordinates
// (zero when nothing was detected). Keypoints are the primary person's
// full skeleton in pixels. PrimaryPersonArea is the normalized bounding
// box area of the primary person, used for absence detection.
type Result struct {
	Detected          bool       `json:"detected"`
	PointX            float64    `json:"point_x"`
	PointY            float64    `json:"point_y"`
	Confidence        float64    `json:"confidence"`
	Keypoints         []Keypoint `json:"keypoints"`
	Width             int        `json:"width"`
	Height            int        `json:"height"`
	PersonCount       int        `json:"person_count"`
	PrimaryPersonArea float64    `json:"primary_person_area"`
}

// EmptyResult returns a "nothing detected" snapshot carrying the given
// scene statistics.
func EmptyResult(personCount int, primaryArea float64) Result {
	return Result{
		PersonCount:       personCount,
		PrimaryPersonArea: primaryArea,
	}
}

// Clone returns a deep copy of the result. Consumers of the async engine
// always receive clones so the worker's snapshot is never shared.
func (r Result) Clone() Result {
	out := r
	if len(r.Keypoints) > 0 {
		out.Keypoints = make([]Keypoint, len(r.Keypoints))
		copy(out.Keypoints, r.Keypoints)
	}
	return out
}

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the pose snapshot.
	// A failed inference is reported as an error; the caller treats it
	// as "no detection" for that cycle.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// ModelPath is the YOLOv8-pose ONNX model file.
	ModelPath string

	// ConfThreshold is the minimum detection confidence (0.0-1.0).
	ConfThreshold float64

	// NMSThreshold is the non-maximum-suppression IoU threshold.
	NMSThreshold float64

	// InputSize is the square network input resolution.
	InputSize int

	// MaxPersons rejects frames with more people than this (ambiguous scene).
	MaxPersons int

	// MinPersonArea rejects primary persons smaller than this normalized area.
	MinPersonArea float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ModelPath:     "models/yolov8n-pose.onnx",
		ConfThreshold: 0.5,
		NMSThreshold:  0.45,
		InputSize:     640,
		MaxPersons:    2,
		MinPersonArea: 0.01,
	}
}
