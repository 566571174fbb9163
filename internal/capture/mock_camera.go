package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrPlaybackDone is returned by a non-looping MockCamera once its
// script is exhausted.
var ErrPlaybackDone = errors.New("playback script exhausted")

// errCaptureMiss models a transient device read failure.
var errCaptureMiss = errors.New("simulated capture miss")

// MockCamera plays back a scripted frame sequence so pipeline tests can
// drive the tick loop without a device. Beyond plain playback it can
// inject transient capture misses, which the orchestration loop must
// absorb by rescheduling rather than crashing.
type MockCamera struct {
	mu     sync.Mutex
	script []*gocv.Mat
	cursor int
	loop   bool
	open   bool
	misses int
	reads  int
}

// NewMockCamera creates a camera that plays the given frames in order.
// With loop set, playback wraps around instead of ending.
func NewMockCamera(script []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{script: script, loop: loop}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.cursor = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// ReadFrame returns a clone of the next scripted frame. Pending misses
// queued by DropNext are consumed first, one per read.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++
	if c.misses > 0 {
		c.misses--
		return nil, errCaptureMiss
	}
	if len(c.script) == 0 {
		return nil, ErrPlaybackDone
	}
	if c.cursor >= len(c.script) {
		if !c.loop {
			return nil, ErrPlaybackDone
		}
		c.cursor = 0
	}

	// Callers mirror and close the frame, so hand out a clone.
	frame := c.script[c.cursor].Clone()
	c.cursor++
	return &frame, nil
}

// DropNext makes the following n reads fail with a transient error,
// simulating a device hiccup mid-session.
func (c *MockCamera) DropNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses = n
}

// Reads reports how many ReadFrame calls have been made, misses
// included.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// SetFrames replaces the script and rewinds playback.
func (c *MockCamera) SetFrames(script []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = script
	c.cursor = 0
}

// Reset rewinds playback to the first frame.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = 0
}
