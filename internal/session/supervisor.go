// Package session watches the detection stream for the user leaving the
// kiosk mid-transaction and gates confirmed gestures into effective ones.
package session

import (
	"github.com/HR0620/airteller/internal/detector"
	"github.com/HR0620/airteller/internal/track"
)

// Config holds the hand-tuned absence heuristics. The thresholds mirror
// the field-calibrated values and are surfaced here rather than re-derived.
type Config struct {
	// AbsenceFrames is how many consecutive suspicious ticks (full
	// disappearance or shrinkage) trigger the warning.
	AbsenceFrames int
	// WindowSize is the rolling presence-bit window for intermittent loss.
	WindowSize int
	// PresenceRate is the maximum presence ratio over the window that
	// still counts as intermittent loss.
	PresenceRate float64
	// MaxPresenceRun is the longest unbroken presence run compatible with
	// intermittent loss.
	MaxPresenceRun int
	// ShrinkRatio flags a person smaller than baseline*ShrinkRatio.
	ShrinkRatio float64
	// DriftRatio bounds how far area may wander from the baseline while
	// still feeding the EMA.
	DriftRatio float64
	// EMAAlpha is the baseline smoothing factor.
	EMAAlpha float64
	// GraceFrames is the pause applied after resuming from a warning.
	GraceFrames int
}

// DefaultConfig returns the production absence heuristics.
func DefaultConfig() Config {
	return Config{
		AbsenceFrames:  45,
		WindowSize:     60,
		PresenceRate:   0.2,
		MaxPresenceRun: 5,
		ShrinkRatio:    0.4,
		DriftRatio:     0.15,
		EMAAlpha:       0.05,
		GraceFrames:    90,
	}
}

// Supervisor detects prolonged or intermittent user absence from raw
// detection snapshots, independent of the gesture path. It signals the
// caller when the scene looks abandoned; the caller decides the state
// transition.
type Supervisor struct {
	config Config

	normalArea    float64
	hasNormalArea bool
	absenceFrames int
	graceFrames   int
	history       []byte

	lastTrigger    track.Zone
	hasLastTrigger bool
}

// NewSupervisor creates a Supervisor with the given heuristics.
func NewSupervisor(config Config) *Supervisor {
	if config.WindowSize <= 0 {
		config.WindowSize = 1
	}
	return &Supervisor{
		config:  config,
		history: make([]byte, 0, config.WindowSize),
	}
}

// SeedNormalArea anchors the area baseline, typically once face alignment
// completes. The baseline is never reset except by seeding again.
func (s *Supervisor) SeedNormalArea(area float64) {
	if area <= 0 {
		return
	}
	s.normalArea = area
	s.hasNormalArea = true
}

// NormalArea returns the current EMA baseline, if seeded.
func (s *Supervisor) NormalArea() (float64, bool) {
	return s.normalArea, s.hasNormalArea
}

// StartGracePeriod suspends absence judgement for the configured number of
// ticks, so resuming from a warning does not immediately re-trigger it.
func (s *Supervisor) StartGracePeriod() {
	s.graceFrames = s.config.GraceFrames
}

// CheckAbsence consumes one detection snapshot and reports whether the
// user looks absent. It must be called once per tick; ticks spent in
// ignorable states should simply not call it.
func (s *Supervisor) CheckAbsence(res detector.Result) bool {
	if s.graceFrames > 0 {
		s.graceFrames--
		return false
	}

	// Two or more people make the scene ambiguous: suspend judgement
	// entirely rather than risk a false positive.
	if res.PersonCount >= 2 {
		return false
	}

	present := res.PersonCount > 0
	s.pushPresence(present)

	suspicious := false

	if !present {
		s.absenceFrames++
		if s.absenceFrames >= s.config.AbsenceFrames {
			suspicious = true
		}
	} else if s.hasNormalArea && res.PrimaryPersonArea < s.normalArea*s.config.ShrinkRatio {
		// Someone is there but far smaller than the operating user:
		// probably walked away with a bystander in frame. The baseline
		// is frozen while this counts so an absent user cannot drag it
		// down.
		s.absenceFrames++
		if s.absenceFrames >= s.config.AbsenceFrames {
			suspicious = true
		}
	} else {
		s.absenceFrames = 0
		if s.hasNormalArea && abs(res.PrimaryPersonArea-s.normalArea) < s.normalArea*s.config.DriftRatio {
			alpha := s.config.EMAAlpha
			s.normalArea = alpha*res.PrimaryPersonArea + (1-alpha)*s.normalArea
		}
	}

	if s.intermittentLoss() {
		suspicious = true
	}

	return suspicious
}

// pushPresence records one presence bit in the rolling window.
func (s *Supervisor) pushPresence(present bool) {
	bit := byte(0)
	if present {
		bit = 1
	}
	s.history = append(s.history, bit)
	if len(s.history) > s.config.WindowSize {
		s.history = s.history[1:]
	}
}

// intermittentLoss reports whether the user is flickering in and out of
// frame: low presence rate with no sustained presence run over the window.
func (s *Supervisor) intermittentLoss() bool {
	if len(s.history) < s.config.WindowSize {
		return false
	}

	sum := 0
	maxRun := 0
	run := 0
	for _, bit := range s.history {
		if bit == 1 {
			sum++
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}

	rate := float64(sum) / float64(len(s.history))
	return rate <= s.config.PresenceRate && maxRun < s.config.MaxPresenceRun
}

// GateGesture applies same-gesture blocking on top of the validator: a
// confirmed gesture is delivered once and then suppressed until a stable
// neutral observation clears it. Returns the effective gesture for this
// tick, if any.
func (s *Supervisor) GateGesture(confirmed track.Zone, hasConfirmed bool, tracker track.Result) (track.Zone, bool) {
	if tracker.Position == track.ZoneFree && tracker.IsStable {
		s.hasLastTrigger = false
	}

	if !hasConfirmed {
		return "", false
	}
	if s.hasLastTrigger && confirmed == s.lastTrigger {
		return "", false
	}

	s.lastTrigger = confirmed
	s.hasLastTrigger = true
	return confirmed, true
}

// Reset clears counters and history but keeps the seeded baseline, which
// only re-alignment may replace.
func (s *Supervisor) Reset() {
	s.absenceFrames = 0
	s.graceFrames = 0
	s.history = s.history[:0]
	s.hasLastTrigger = false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
