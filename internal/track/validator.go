package track

import "time"

// Prediction is one tick's classification as seen by the validator:
// the stabilizer's zone plus a confidence expressing whether the zone
// was stable this tick.
type Prediction struct {
	Class      Zone
	Confidence float64
}

// ValidatorConfig holds the gesture confirmation parameters.
type ValidatorConfig struct {
	// RequiredFrames is the streak length that confirms a gesture.
	RequiredFrames int
	// ConfidenceThreshold discards predictions below this confidence.
	ConfidenceThreshold float64
	// NeutralClass is the "no gesture" class; seeing it resets the streak
	// and releases an active lock early.
	NeutralClass Zone
	// LockDuration is how long confirmations are suppressed after an
	// emission.
	LockDuration time.Duration
}

// DefaultValidatorConfig returns the production confirmation parameters.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		RequiredFrames:      5,
		ConfidenceThreshold: 0.7,
		NeutralClass:        ZoneFree,
		LockDuration:        500 * time.Millisecond,
	}
}

// Validator turns a continuous zone signal into one-shot confirmed
// gestures. After a confirmation it locks for LockDuration so a sustained
// pose cannot re-fire every tick; observing the neutral class releases the
// lock early, treating the withdrawn hand as acknowledgment.
type Validator struct {
	config ValidatorConfig

	consecutive int
	lastClass   Zone
	hasLast     bool
	lockedUntil time.Time

	now func() time.Time
}

// NewValidator creates a Validator with the given configuration.
func NewValidator(config ValidatorConfig) *Validator {
	if config.RequiredFrames <= 0 {
		config.RequiredFrames = 1
	}
	return &Validator{
		config: config,
		now:    time.Now,
	}
}

// Validate consumes one prediction and returns the confirmed gesture for
// this tick, if any. At most one confirmation is emitted per streak.
func (v *Validator) Validate(pred Prediction) (Zone, bool) {
	now := v.now()

	if now.Before(v.lockedUntil) {
		if pred.Class == v.config.NeutralClass {
			// Hand withdrawn: release the lock early.
			v.lockedUntil = time.Time{}
		}
		return "", false
	}

	if pred.Confidence < v.config.ConfidenceThreshold || pred.Class == v.config.NeutralClass {
		v.resetStreak()
		return "", false
	}

	if v.hasLast && pred.Class == v.lastClass {
		v.consecutive++
	} else {
		v.consecutive = 1
		v.lastClass = pred.Class
		v.hasLast = true
	}

	if v.consecutive >= v.config.RequiredFrames {
		v.resetStreak()
		v.lockedUntil = now.Add(v.config.LockDuration)
		return pred.Class, true
	}

	return "", false
}

// ForceReset clears the streak and re-arms a fresh lock window. The state
// machine calls this on every transition so a gesture accumulated on the
// previous screen cannot fire into the new one.
func (v *Validator) ForceReset() {
	v.resetStreak()
	v.lockedUntil = v.now().Add(v.config.LockDuration)
}

// IsLocked reports whether the post-confirmation lock is active.
func (v *Validator) IsLocked() bool {
	return v.now().Before(v.lockedUntil)
}

// Progress returns the streak completion ratio for feedback UIs.
func (v *Validator) Progress() float64 {
	if !v.hasLast {
		return 0
	}
	return min(1.0, float64(v.consecutive)/float64(v.config.RequiredFrames))
}

func (v *Validator) resetStreak() {
	v.consecutive = 0
	v.hasLast = false
}
