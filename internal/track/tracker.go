// Package track turns noisy per-frame pose estimates into stable
// directional signals: a debounced screen zone and one-shot confirmed
// gestures.
package track

import (
	"github.com/HR0620/airteller/internal/detector"
)

// Zone is the discrete horizontal region the user is pointing at.
type Zone string

const (
	ZoneLeft   Zone = "left"
	ZoneCenter Zone = "center"
	ZoneRight  Zone = "right"
	// ZoneFree means no one is pointing (hand withdrawn or not detected).
	ZoneFree Zone = "free"
)

// forearmExtension is the forearm vector multiplier for fingertip
// extrapolation: tip = wrist + (wrist - elbow) * forearmExtension.
const forearmExtension = 0.8

// minKeypointConf is the minimum keypoint confidence for a wrist or elbow
// to participate in the fingertip estimate.
const minKeypointConf = 0.3

// StabilizerConfig holds the stabilizer's tunable parameters.
type StabilizerConfig struct {
	// LeftThreshold and RightThreshold split the normalized X axis into
	// left / center / right.
	LeftThreshold  float64
	RightThreshold float64
	// RequiredConsecutive is how many identical classifications confirm
	// a zone change.
	RequiredConsecutive int
	// FreeThreshold is how many no-detection ticks snap the zone to free.
	FreeThreshold int
	// EdgeMargin rejects points within this normalized distance of the
	// left/right frame edges.
	EdgeMargin float64
	// HeadZoneRatio rejects points in the top fraction of the frame, so a
	// wrist raised next to the head is not read as a selection.
	HeadZoneRatio float64
}

// DefaultStabilizerConfig returns the production thresholds.
func DefaultStabilizerConfig() StabilizerConfig {
	return StabilizerConfig{
		LeftThreshold:       1.0 / 3.0,
		RightThreshold:      2.0 / 3.0,
		RequiredConsecutive: 5,
		FreeThreshold:       5,
		EdgeMargin:          0.05,
		HeadZoneRatio:       0.1,
	}
}

// Result is the stabilizer's per-tick output. Position only ever changes
// after RequiredConsecutive identical classifications, so readers of
// Position never see flicker; Progress exposes the live candidate streak
// for feedback rendering.
type Result struct {
	Position Zone
	Progress float64
	IsStable bool
	Debug    DebugInfo
}

// DebugInfo carries the raw per-tick values for telemetry.
type DebugInfo struct {
	PointX           float64 `json:"point_x"`
	PointY           float64 `json:"point_y"`
	Candidate        Zone    `json:"candidate,omitempty"`
	Consecutive      int     `json:"consecutive"`
	UsingFingertip   bool    `json:"using_fingertip"`
	NoDetectionCount int     `json:"no_detection_count"`
}

// Stabilizer classifies the estimated fingertip into a zone and debounces
// the classification over consecutive ticks. The stable output holds the
// previous zone until a new candidate survives the full streak; sustained
// no-detection snaps the output to ZoneFree.
type Stabilizer struct {
	config StabilizerConfig

	noDetectionCount int
	lastStable       Zone
	candidate        Zone
	hasCandidate     bool
	consecutive      int
}

// NewStabilizer creates a Stabilizer with the given configuration.
func NewStabilizer(config StabilizerConfig) *Stabilizer {
	if config.RequiredConsecutive <= 0 {
		config.RequiredConsecutive = 1
	}
	if config.FreeThreshold <= 0 {
		config.FreeThreshold = 1
	}
	return &Stabilizer{
		config:     config,
		lastStable: ZoneFree,
	}
}

// Update consumes one detection snapshot and returns the debounced zone
// signal for this tick.
func (s *Stabilizer) Update(res detector.Result) Result {
	if !res.Detected {
		return s.handleNoDetection()
	}

	x, y, ok := s.fingertip(res)
	if !ok {
		// No wrist cleared the confidence floor; for this component the
		// tick counts as no detection.
		return s.handleNoDetection()
	}

	// Points next to the head or hugging the frame edges are sensor
	// artifacts, not selections.
	if y < s.config.HeadZoneRatio || s.isEdge(x) {
		return s.handleNoDetection()
	}

	candidate := s.classify(x)

	s.noDetectionCount = 0

	if s.hasCandidate && candidate == s.candidate {
		s.consecutive++
	} else {
		s.candidate = candidate
		s.hasCandidate = true
		s.consecutive = 1
	}

	progress := min(1.0, float64(s.consecutive)/float64(s.config.RequiredConsecutive))

	debug := DebugInfo{
		PointX:         x,
		PointY:         y,
		Candidate:      candidate,
		Consecutive:    s.consecutive,
		UsingFingertip: true,
	}

	if s.consecutive >= s.config.RequiredConsecutive {
		s.lastStable = candidate
		return Result{Position: candidate, Progress: 1.0, IsStable: true, Debug: debug}
	}

	// Not confirmed yet: hold the previous stable zone.
	return Result{Position: s.lastStable, Progress: progress, IsStable: false, Debug: debug}
}

// handleNoDetection counts misses and snaps to free once the run is long
// enough. The candidate streak is abandoned immediately.
func (s *Stabilizer) handleNoDetection() Result {
	s.noDetectionCount++
	s.hasCandidate = false
	s.consecutive = 0

	debug := DebugInfo{NoDetectionCount: s.noDetectionCount}

	if s.noDetectionCount >= s.config.FreeThreshold {
		s.lastStable = ZoneFree
		return Result{Position: ZoneFree, Progress: 0, IsStable: true, Debug: debug}
	}

	return Result{Position: s.lastStable, Progress: 0, IsStable: false, Debug: debug}
}

// fingertip estimates the pointing position in normalized coordinates by
// extending the forearm vector past the wrist. The wrist with the higher
// confidence wins; a low-confidence elbow degrades to the wrist point
// alone.
func (s *Stabilizer) fingertip(res detector.Result) (x, y float64, ok bool) {
	if len(res.Keypoints) <= detector.RightWrist || res.Width == 0 || res.Height == 0 {
		return 0, 0, false
	}

	rw := res.Keypoints[detector.RightWrist]
	lw := res.Keypoints[detector.LeftWrist]
	re := res.Keypoints[detector.RightElbow]
	le := res.Keypoints[detector.LeftElbow]

	var wrist, elbow detector.Keypoint
	switch {
	case rw.Conf > minKeypointConf && lw.Conf > minKeypointConf:
		if rw.Conf > lw.Conf {
			wrist, elbow = rw, re
		} else {
			wrist, elbow = lw, le
		}
	case rw.Conf > minKeypointConf:
		wrist, elbow = rw, re
	case lw.Conf > minKeypointConf:
		wrist, elbow = lw, le
	default:
		return 0, 0, false
	}

	w := float64(res.Width)
	h := float64(res.Height)

	if elbow.Conf < minKeypointConf {
		return wrist.X / w, wrist.Y / h, true
	}

	fx := wrist.X + (wrist.X-elbow.X)*forearmExtension
	fy := wrist.Y + (wrist.Y-elbow.Y)*forearmExtension
	return fx / w, fy / h, true
}

// classify maps a normalized X coordinate onto a zone.
func (s *Stabilizer) classify(x float64) Zone {
	switch {
	case x < s.config.LeftThreshold:
		return ZoneLeft
	case x < s.config.RightThreshold:
		return ZoneCenter
	default:
		return ZoneRight
	}
}

// isEdge reports whether the point hugs the left or right frame edge.
func (s *Stabilizer) isEdge(x float64) bool {
	return x < s.config.EdgeMargin || x > 1.0-s.config.EdgeMargin
}

// Reset clears all streak state back to the free position.
func (s *Stabilizer) Reset() {
	s.noDetectionCount = 0
	s.lastStable = ZoneFree
	s.hasCandidate = false
	s.consecutive = 0
}
