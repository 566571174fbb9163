package detector

import (
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Engine timing constants.
const (
	// waitTimeout bounds how long the worker blocks waiting for a frame,
	// so a stop request is observed within one wait period.
	waitTimeout = 100 * time.Millisecond
	// joinTimeout bounds how long Stop waits for the worker to exit.
	joinTimeout = time.Second
)

// Engine decouples slow model inference from the frame-producing tick.
//
// Submit stores the most recent frame, overwriting any not-yet-processed
// prior submission: the engine drops frames rather than queueing them, so
// the result may lag the live frame but is never stale-by-backlog. Latest
// never blocks and always returns a copy; before the first inference
// completes it returns an empty "not detected" snapshot.
type Engine struct {
	detector Detector
	interval time.Duration

	mu          sync.Mutex
	latestFrame *gocv.Mat
	latest      Result
	running     bool
	released    bool

	signal chan struct{}
	stopCh chan struct{}
	done   chan struct{}
}

// NewEngine creates an Engine around the given detector. interval is the
// minimum spacing between inference cycles.
func NewEngine(det Detector, interval time.Duration) *Engine {
	return &Engine{
		detector: det,
		interval: interval,
	}
}

// Start launches the background worker. Calling Start on a running engine
// is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running || e.released {
		return
	}

	e.running = true
	e.signal = make(chan struct{}, 1)
	e.stopCh = make(chan struct{})
	e.done = make(chan struct{})

	go e.inferenceLoop(e.signal, e.stopCh, e.done)
}

// Submit hands a frame to the worker. The frame is cloned; the caller keeps
// ownership of its Mat. A pending unprocessed frame is replaced and released.
// Submit is a no-op when the engine is not running.
func (e *Engine) Submit(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	if e.latestFrame != nil {
		e.latestFrame.Close()
	}
	clone := frame.Clone()
	e.latestFrame = &clone
	signal := e.signal
	e.mu.Unlock()

	select {
	case signal <- struct{}{}:
	default:
	}
}

// Latest returns a copy of the most recently published result without
// blocking.
func (e *Engine) Latest() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest.Clone()
}

// Stop signals the worker and waits for it to exit, bounded by joinTimeout.
// Stopping an engine that never started is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopCh := e.stopCh
	done := e.done
	e.mu.Unlock()

	close(stopCh)

	select {
	case <-done:
	case <-time.After(joinTimeout):
		log.Printf("Inference worker did not exit within %v", joinTimeout)
	}

	e.mu.Lock()
	if e.latestFrame != nil {
		e.latestFrame.Close()
		e.latestFrame = nil
	}
	e.mu.Unlock()
}

// Release stops the worker and closes the underlying detector. It is
// idempotent and safe to call even if Start was never invoked.
func (e *Engine) Release() {
	e.Stop()

	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return
	}
	e.released = true
	e.mu.Unlock()

	if err := e.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
}

// inferenceLoop is the worker goroutine: wait for a frame, run one
// inference, publish, then pace to the configured interval. A failed
// inference is logged and published as "no detection"; the loop continues.
func (e *Engine) inferenceLoop(signal, stopCh chan struct{}, done chan struct{}) {
	defer close(done)

	timeout := time.NewTimer(waitTimeout)
	defer timeout.Stop()

	for {
		timeout.Reset(waitTimeout)
		select {
		case <-stopCh:
			return
		case <-signal:
		case <-timeout.C:
			continue
		}

		e.mu.Lock()
		frame := e.latestFrame
		e.latestFrame = nil
		e.mu.Unlock()

		if frame == nil {
			continue
		}

		start := time.Now()
		result, err := e.detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("Inference error: %v", err)
			result = EmptyResult(0, 0)
		}

		e.mu.Lock()
		e.latest = result
		e.mu.Unlock()

		if wait := e.interval - time.Since(start); wait > 0 {
			select {
			case <-stopCh:
				return
			case <-time.After(wait):
			}
		}
	}
}
