// Package config loads the kiosk YAML configuration. Every tunable the
// pipeline exposes lives here with a production default, so a missing or
// partial file still yields a runnable kiosk.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the full kiosk configuration tree.
type Config struct {
	Camera   Camera   `yaml:"camera"`
	Vision   Vision   `yaml:"vision"`
	Position Position `yaml:"position"`
	Gesture  Gesture  `yaml:"gesture"`
	Session  Session  `yaml:"session"`
	Security Security `yaml:"security"`
	Audio    Audio    `yaml:"audio"`
	Monitor  Monitor  `yaml:"monitor"`

	FaceGuide FaceGuide `yaml:"face_guide"`
	DataDir   string    `yaml:"data_dir"`
}

// Camera selects and shapes the capture device.
type Camera struct {
	DeviceID int `yaml:"device_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
}

// Vision configures the pose model and the async engine.
type Vision struct {
	ModelPath     string  `yaml:"model_path"`
	ConfThreshold float64 `yaml:"min_detection_confidence"`
	NMSThreshold  float64 `yaml:"nms_threshold"`
	InputSize     int     `yaml:"input_size"`
	IntervalMs    int     `yaml:"inference_interval_ms"`
	MaxPersons    int     `yaml:"max_persons"`
	MinPersonArea float64 `yaml:"min_person_area"`
}

// Position configures the zone stabilizer.
type Position struct {
	LeftThreshold       float64 `yaml:"left_threshold"`
	RightThreshold      float64 `yaml:"right_threshold"`
	RequiredConsecutive int     `yaml:"required_consecutive"`
	FreeThreshold       int     `yaml:"free_threshold"`
	EdgeMargin          float64 `yaml:"edge_margin"`
	HeadZoneRatio       float64 `yaml:"head_zone_ratio"`
}

// Gesture configures the confirmation validator.
type Gesture struct {
	RequiredFrames      int     `yaml:"required_frames"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	LockMs              int     `yaml:"lock_ms"`
}

// Session configures the absence supervisor. These are hand-tuned field
// values; change them in deployment config, not here.
type Session struct {
	AbsenceFrames  int     `yaml:"absence_frames"`
	WindowSize     int     `yaml:"window_size"`
	PresenceRate   float64 `yaml:"presence_rate"`
	MaxPresenceRun int     `yaml:"max_presence_run"`
	ShrinkRatio    float64 `yaml:"shrink_ratio"`
	DriftRatio     float64 `yaml:"drift_ratio"`
	EMAAlpha       float64 `yaml:"ema_alpha"`
	GraceFrames    int     `yaml:"grace_frames"`
}

// Security configures the account ledger.
type Security struct {
	PINSalt   string `yaml:"pin_salt"`
	MaxTrials int    `yaml:"max_trials"`
	MaxAmount int64  `yaml:"max_amount"`
}

// Audio configures sound effect rate limiting.
type Audio struct {
	SECooldownMs int `yaml:"se_cooldown_ms"`
}

// Monitor configures the operator telemetry server. An empty Addr
// disables it.
type Monitor struct {
	Addr string `yaml:"addr"`
}

// FaceGuide configures the startup face alignment check.
type FaceGuide struct {
	CascadePath    string  `yaml:"cascade_path"`
	RequiredFrames int     `yaml:"required_frames"`
	GuideBoxRatio  float64 `yaml:"guide_box_ratio"`
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		Camera: Camera{
			DeviceID: 0,
			Width:    640,
			Height:   480,
			FPS:      30,
		},
		Vision: Vision{
			ModelPath:     "models/yolov8n-pose.onnx",
			ConfThreshold: 0.5,
			NMSThreshold:  0.45,
			InputSize:     640,
			IntervalMs:    30,
			MaxPersons:    2,
			MinPersonArea: 0.01,
		},
		Position: Position{
			LeftThreshold:       1.0 / 3.0,
			RightThreshold:      2.0 / 3.0,
			RequiredConsecutive: 5,
			FreeThreshold:       5,
			EdgeMargin:          0.05,
			HeadZoneRatio:       0.1,
		},
		Gesture: Gesture{
			RequiredFrames:      5,
			ConfidenceThreshold: 0.7,
			LockMs:              500,
		},
		Session: Session{
			AbsenceFrames:  45,
			WindowSize:     60,
			PresenceRate:   0.2,
			MaxPresenceRun: 5,
			ShrinkRatio:    0.4,
			DriftRatio:     0.15,
			EMAAlpha:       0.05,
			GraceFrames:    90,
		},
		Security: Security{
			PINSalt:   "default_salt",
			MaxTrials: 3,
			MaxAmount: 999999,
		},
		Audio: Audio{
			SECooldownMs: 100,
		},
		Monitor: Monitor{
			Addr: ":8080",
		},
		FaceGuide: FaceGuide{
			CascadePath:    "config/haarcascade_frontalface_default.xml",
			RequiredFrames: 30,
			GuideBoxRatio:  0.6,
		},
		DataDir: "data",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
