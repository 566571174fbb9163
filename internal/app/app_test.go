package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/capture"
	"github.com/HR0620/airteller/internal/detector"
	"github.com/HR0620/airteller/internal/flow"
	"github.com/HR0620/airteller/internal/monitor"
	"github.com/HR0620/airteller/internal/session"
	"github.com/HR0620/airteller/internal/track"
)

func newTestApp(t *testing.T) (*App, *detector.MockDetector, *flow.Machine) {
	t.Helper()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := camera.Open(); err != nil {
		t.Fatalf("open mock camera: %v", err)
	}

	mock := detector.NewMockDetector()
	engine := detector.NewEngine(mock, 0)
	t.Cleanup(engine.Release)

	validator := track.NewValidator(track.DefaultValidatorConfig())
	env := &flow.Env{
		Audio: audio.NewPlayer(audio.NullBackend{}, 0),
		Ctx:   &flow.TransactionContext{},
	}
	machine := flow.NewMachine(env, flow.StateMenu, validator.ForceReset)
	machine.Start()

	a := New(Config{
		Camera:     camera,
		Engine:     engine,
		Stabilizer: track.NewStabilizer(track.DefaultStabilizerConfig()),
		Validator:  validator,
		Supervisor: session.NewSupervisor(session.DefaultConfig()),
		Machine:    machine,
	})
	return a, mock, machine
}

func TestTickSurvivesCaptureMiss(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.config.Camera.(*capture.MockCamera).DropNext(1)

	if delay := a.tick(); delay != frameRetry {
		t.Errorf("delay after capture miss = %v, want %v", delay, frameRetry)
	}

	// The device recovers on the next read.
	if delay := a.tick(); delay != TickInterval {
		t.Errorf("delay after recovery = %v, want %v", delay, TickInterval)
	}
}

func TestTickPublishesPreviewFrames(t *testing.T) {
	a, _, _ := newTestApp(t)
	hub := monitor.NewHub()
	a.config.Hub = hub

	// Nobody watching: the tick skips JPEG encoding entirely.
	a.tick()
	if data, _ := hub.LatestFrame(); data != nil {
		t.Fatal("frame encoded with no stream attached")
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.NewStreamHandler(hub).ServeHTTP(httptest.NewRecorder(), req)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !hub.HasViewers() {
		if time.Now().After(deadline) {
			t.Fatal("stream viewer never registered")
		}
		time.Sleep(time.Millisecond)
	}

	a.tick()
	if data, _ := hub.LatestFrame(); len(data) == 0 {
		t.Error("no frame published while a stream is attached")
	}
}

func TestTickAdvancesMachine(t *testing.T) {
	a, _, machine := newTestApp(t)

	for i := 0; i < 5; i++ {
		if delay := a.tick(); delay != TickInterval {
			t.Fatalf("tick %d delay = %v, want %v", i, delay, TickInterval)
		}
	}
	if machine.CurrentStateName() != "Menu" {
		t.Errorf("state = %s, want Menu", machine.CurrentStateName())
	}
}

func TestAbsenceForcesWarningState(t *testing.T) {
	a, _, machine := newTestApp(t)

	// The mock detector reports nobody present; 45 consecutive ticks
	// must force the warning screen.
	for i := 0; i < 60; i++ {
		a.tick()
		if machine.CurrentStateID() == flow.StateAbsenceWarning {
			if i < 43 {
				t.Fatalf("warning fired too early, tick %d", i)
			}
			return
		}
	}
	t.Error("absence never forced the warning state")
}

func TestAbsenceSuspendedDuringWarning(t *testing.T) {
	a, _, machine := newTestApp(t)

	machine.ChangeState(flow.StateAbsenceWarning)
	for i := 0; i < 50; i++ {
		a.tick()
	}
	// Still on the warning screen until its own countdown runs out;
	// absence judgement must not stack a second transition.
	if machine.CurrentStateID() != flow.StateAbsenceWarning {
		t.Errorf("state = %v, want AbsenceWarning", machine.CurrentStateID())
	}
}

func TestInjectKeyReachesActiveState(t *testing.T) {
	a, _, machine := newTestApp(t)

	a.InjectKey('l', "")
	a.tick()

	if machine.Active().ID() != flow.StateLanguage {
		t.Errorf("active = %v, want Language modal", machine.Active().ID())
	}
}

func TestStartStopIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Stop() // before Start: no-op
	a.Start()
	a.Start() // double start: no-op
	a.Stop()
	a.Stop() // double stop: no-op
}
