package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/HR0620/airteller/internal/app"
	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/capture"
	"github.com/HR0620/airteller/internal/config"
	"github.com/HR0620/airteller/internal/detector"
	"github.com/HR0620/airteller/internal/flow"
	"github.com/HR0620/airteller/internal/ledger"
	"github.com/HR0620/airteller/internal/monitor"
	"github.com/HR0620/airteller/internal/session"
	"github.com/HR0620/airteller/internal/track"
)

func main() {
	fmt.Println("AirTeller - Touchless Banking Kiosk")

	configPath := flag.String("config", "config/airteller.yml", "configuration file")
	dbPath := flag.String("db", "", "ledger database path (overrides config data dir)")
	addr := flag.String("addr", "", "monitor listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ledger store.
	path := *dbPath
	if path == "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		path = filepath.Join(cfg.DataDir, "airteller.db")
	}
	store, err := ledger.New(path, ledger.Config{
		PINSalt:   cfg.Security.PINSalt,
		MaxTrials: cfg.Security.MaxTrials,
		MaxAmount: cfg.Security.MaxAmount,
	})
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer store.Close()

	// Camera.
	camera := capture.NewCamera(cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS)
	if err := camera.Open(); err != nil {
		log.Fatalf("Failed to open camera: %v", err)
	}
	defer camera.Close()

	// Pose detector; fall back to the mock when the model is missing so
	// the kiosk still boots on a dev machine.
	var det detector.Detector
	if pose, err := detector.NewYOLOPose(detector.Config{
		ModelPath:     cfg.Vision.ModelPath,
		ConfThreshold: cfg.Vision.ConfThreshold,
		NMSThreshold:  cfg.Vision.NMSThreshold,
		InputSize:     cfg.Vision.InputSize,
		MaxPersons:    cfg.Vision.MaxPersons,
		MinPersonArea: cfg.Vision.MinPersonArea,
	}); err == nil {
		det = pose
		log.Println("Using YOLOv8 pose detection")
	} else {
		log.Printf("Pose model not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	engine := detector.NewEngine(det, time.Duration(cfg.Vision.IntervalMs)*time.Millisecond)

	stabilizer := track.NewStabilizer(track.StabilizerConfig{
		LeftThreshold:       cfg.Position.LeftThreshold,
		RightThreshold:      cfg.Position.RightThreshold,
		RequiredConsecutive: cfg.Position.RequiredConsecutive,
		FreeThreshold:       cfg.Position.FreeThreshold,
		EdgeMargin:          cfg.Position.EdgeMargin,
		HeadZoneRatio:       cfg.Position.HeadZoneRatio,
	})
	validator := track.NewValidator(track.ValidatorConfig{
		RequiredFrames:      cfg.Gesture.RequiredFrames,
		ConfidenceThreshold: cfg.Gesture.ConfidenceThreshold,
		NeutralClass:        track.ZoneFree,
		LockDuration:        time.Duration(cfg.Gesture.LockMs) * time.Millisecond,
	})
	supervisor := session.NewSupervisor(session.Config{
		AbsenceFrames:  cfg.Session.AbsenceFrames,
		WindowSize:     cfg.Session.WindowSize,
		PresenceRate:   cfg.Session.PresenceRate,
		MaxPresenceRun: cfg.Session.MaxPresenceRun,
		ShrinkRatio:    cfg.Session.ShrinkRatio,
		DriftRatio:     cfg.Session.DriftRatio,
		EMAAlpha:       cfg.Session.EMAAlpha,
		GraceFrames:    cfg.Session.GraceFrames,
	})

	player := audio.NewPlayer(audio.NullBackend{}, time.Duration(cfg.Audio.SECooldownMs)*time.Millisecond)

	// Face alignment is optional: without the cascade the kiosk starts
	// straight at the menu.
	initial := flow.StateMenu
	var face flow.FaceGate
	if checker, err := capture.NewFaceChecker(cfg.FaceGuide.CascadePath, cfg.FaceGuide.RequiredFrames, cfg.FaceGuide.GuideBoxRatio); err == nil {
		face = checker
		initial = flow.StateFaceAlignment
		defer checker.Close()
	} else {
		log.Printf("Face alignment disabled: %v", err)
	}

	env := &flow.Env{
		Ledger: store,
		Audio:  player,
		Ctx:    &flow.TransactionContext{},
		PinPad: flow.NewPinPad(),
		Face:   face,
		OnAligned: func() {
			if res := engine.Latest(); res.Detected {
				supervisor.SeedNormalArea(res.PrimaryPersonArea)
			}
		},
		OnResume: supervisor.StartGracePeriod,
		OnMenu:   supervisor.Reset,
	}
	machine := flow.NewMachine(env, initial, validator.ForceReset)

	hub := monitor.NewHub()
	kiosk := app.New(app.Config{
		Camera:     camera,
		Engine:     engine,
		Stabilizer: stabilizer,
		Validator:  validator,
		Supervisor: supervisor,
		Machine:    machine,
		Hub:        hub,
	})

	kiosk.Start()
	defer kiosk.Stop()

	listen := *addr
	if listen == "" {
		listen = cfg.Monitor.Addr
	}
	if listen != "" {
		srv := monitor.New(monitor.Config{
			Hub:   hub,
			OnKey: kiosk.InjectKey,
		})
		go func() {
			log.Printf("Monitor listening on %s", listen)
			if err := srv.ListenAndServe(listen); err != nil {
				log.Printf("Monitor server stopped: %v", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down")
}
