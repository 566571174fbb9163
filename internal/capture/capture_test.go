package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCameraLoopAndReset(t *testing.T) {
	f1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	f2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer f1.Close()
	defer f2.Close()

	cam := NewMockCamera([]*gocv.Mat{&f1, &f2}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	// Looping playback never runs out.
	for i := 0; i < 5; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		frame.Close()
	}
}

func TestMockCameraExhaustsWithoutLoop(t *testing.T) {
	f := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer f.Close()

	cam := NewMockCamera([]*gocv.Mat{&f}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("first ReadFrame: %v", err)
	}
	frame.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrPlaybackDone) {
		t.Errorf("expected ErrPlaybackDone after playback ends, got %v", err)
	}

	cam.Reset()
	frame, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame after Reset: %v", err)
	}
	frame.Close()
}

func TestMockCameraClosedRejectsReads(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen before Open, got %v", err)
	}
}

func TestMockCameraScriptedMisses(t *testing.T) {
	f := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer f.Close()

	cam := NewMockCamera([]*gocv.Mat{&f}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	cam.DropNext(2)
	for i := 0; i < 2; i++ {
		if _, err := cam.ReadFrame(); err == nil {
			t.Fatalf("read %d: expected a capture miss", i)
		}
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("read after misses drained: %v", err)
	}
	frame.Close()

	if got := cam.Reads(); got != 3 {
		t.Errorf("Reads() = %d, want 3", got)
	}
}

func TestFaceCheckerMissingCascade(t *testing.T) {
	if _, err := NewFaceChecker("/nonexistent/cascade.xml", 30, 0.6); err == nil {
		t.Error("expected error for a missing cascade file")
	}
}
