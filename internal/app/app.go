// Package app wires the kiosk pipeline together and drives the
// fixed-period tick loop: camera frame in, pose inference, zone
// stabilization, gesture confirmation, absence supervision, and the
// screen state machine.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/HR0620/airteller/internal/capture"
	"github.com/HR0620/airteller/internal/detector"
	"github.com/HR0620/airteller/internal/flow"
	"github.com/HR0620/airteller/internal/monitor"
	"github.com/HR0620/airteller/internal/session"
	"github.com/HR0620/airteller/internal/track"
)

const (
	// TickInterval paces the orchestration loop at roughly 30 Hz.
	TickInterval = 33 * time.Millisecond
	// errorBackoff delays the next tick after an unexpected panic.
	errorBackoff = time.Second
	// frameRetry delays the next tick after a capture miss.
	frameRetry = 50 * time.Millisecond
)

// Config holds the collaborators the app orchestrates. All of them are
// constructed by the caller; the app owns only the tick loop.
type Config struct {
	Camera     capture.Camera
	Engine     *detector.Engine
	Stabilizer *track.Stabilizer
	Validator  *track.Validator
	Supervisor *session.Supervisor
	Machine    *flow.Machine
	Hub        *monitor.Hub
}

// App drives the kiosk. Start launches the tick loop; Stop halts it and
// releases the inference engine.
type App struct {
	config Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	keyCh chan flow.KeyEvent
}

// New creates an App with the given collaborators.
func New(config Config) *App {
	return &App{
		config: config,
		keyCh:  make(chan flow.KeyEvent, 8),
	}
}

// Start begins the tick loop. Calling Start twice is a no-op.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})

	a.config.Engine.Start()
	a.config.Machine.Start()

	go a.run(a.stopCh, a.done)
}

// Stop halts the tick loop and releases the engine. Safe to call more
// than once, and before Start.
func (a *App) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	done := a.done
	a.mu.Unlock()

	<-done
	a.config.Engine.Release()
}

// InjectKey feeds a key event into the next tick, as if typed at the
// kiosk. Drops the event when the queue is full.
func (a *App) InjectKey(char rune, sym string) {
	select {
	case a.keyCh <- flow.KeyEvent{Char: char, Sym: sym}:
	default:
	}
}

func (a *App) run(stopCh, done chan struct{}) {
	defer close(done)

	delay := time.Duration(0)
	for {
		if delay > 0 {
			select {
			case <-stopCh:
				return
			case <-time.After(delay):
			}
		} else {
			select {
			case <-stopCh:
				return
			default:
			}
		}

		delay = a.safeTick()
	}
}

// safeTick runs one tick and converts a panic into a logged backoff.
// Nothing below the tick boundary may take the process down.
func (a *App) safeTick() (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("app: tick panic recovered: %v", r)
			delay = errorBackoff
		}
	}()
	return a.tick()
}
