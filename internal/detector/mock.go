package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	delay  func()
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the snapshot that will be returned by Detect.
func (m *MockDetector) SetResult(result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay installs a hook invoked inside Detect, letting tests simulate
// slow inference.
func (m *MockDetector) SetDelay(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = fn
}

// Calls returns how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured snapshot or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	delay := m.delay
	m.calls++
	result, err := m.result, m.err
	m.mu.Unlock()

	if delay != nil {
		delay()
	}
	if err != nil {
		return Result{}, err
	}
	return result.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingResult returns a preset snapshot of one person pointing, with the
// right wrist at the given normalized position inside a width x height frame.
// The elbow coincides with the wrist so the forearm extrapolation degenerates
// and the estimated fingertip lands exactly at (x, y).
func PointingResult(x, y float64, width, height int) Result {
	kpts := make([]Keypoint, NumKeypoints)

	wx := x * float64(width)
	wy := y * float64(height)

	kpts[RightWrist] = Keypoint{X: wx, Y: wy, Conf: 0.9}
	kpts[RightElbow] = Keypoint{X: wx, Y: wy, Conf: 0.8}
	kpts[LeftWrist] = Keypoint{X: 0, Y: 0, Conf: 0.1}
	kpts[LeftElbow] = Keypoint{X: 0, Y: 0, Conf: 0.1}

	return Result{
		Detected:          true,
		PointX:            x,
		PointY:            y,
		Confidence:        0.9,
		Keypoints:         kpts,
		Width:             width,
		Height:            height,
		PersonCount:       1,
		PrimaryPersonArea: 0.25,
	}
}

// PresenceResult returns a snapshot with a person present but no usable
// wrist, as the session supervisor sees during normal idling.
func PresenceResult(area float64) Result {
	return Result{
		Width:             640,
		Height:            480,
		PersonCount:       1,
		PrimaryPersonArea: area,
	}
}
