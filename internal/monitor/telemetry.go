package monitor

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // operator network only
	},
}

// Snapshot is one tick of pipeline telemetry.
type Snapshot struct {
	State      string  `json:"state"`
	Zone       string  `json:"zone"`
	Candidate  string  `json:"candidate,omitempty"`
	Progress   float64 `json:"progress"`
	Stable     bool    `json:"stable"`
	Locked     bool    `json:"locked"`
	Persons    int     `json:"persons"`
	Suspicious bool    `json:"suspicious"`
	Timestamp  int64   `json:"timestamp"`
}

// Hub fans snapshots out to connected telemetry clients and retains
// the most recent one for the status endpoint. Publish never blocks
// the tick loop: a client that cannot keep up has stale messages
// dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan Snapshot
	latest  Snapshot
	hasAny  bool

	frameMu  sync.RWMutex
	frame    []byte
	frameSeq uint64
	viewers  int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan Snapshot)}
}

// Publish records the snapshot and offers it to every client.
func (h *Hub) Publish(snap Snapshot) {
	if snap.Timestamp == 0 {
		snap.Timestamp = time.Now().UnixMilli()
	}

	h.mu.Lock()
	h.latest = snap
	h.hasAny = true
	for _, ch := range h.clients {
		select {
		case ch <- snap:
		default:
			// Drop the oldest queued snapshot to make room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recently published snapshot.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasAny
}

func (h *Hub) subscribe() (string, chan Snapshot) {
	id := uuid.New().String()
	ch := make(chan Snapshot, 8)
	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// PublishFrame stores an encoded JPEG of the latest processed frame for
// the preview stream. The hub takes ownership of the slice.
func (h *Hub) PublishFrame(jpeg []byte) {
	h.frameMu.Lock()
	h.frame = jpeg
	h.frameSeq++
	h.frameMu.Unlock()
}

// LatestFrame returns the stored JPEG and its sequence number. The
// sequence lets stream writers skip frames they have already sent.
func (h *Hub) LatestFrame() ([]byte, uint64) {
	h.frameMu.RLock()
	defer h.frameMu.RUnlock()
	return h.frame, h.frameSeq
}

// HasViewers reports whether any preview stream is attached, so the
// tick loop can skip JPEG encoding when nobody is watching.
func (h *Hub) HasViewers() bool {
	h.frameMu.RLock()
	defer h.frameMu.RUnlock()
	return h.viewers > 0
}

func (h *Hub) addViewer() {
	h.frameMu.Lock()
	h.viewers++
	h.frameMu.Unlock()
}

func (h *Hub) removeViewer() {
	h.frameMu.Lock()
	h.viewers--
	h.frameMu.Unlock()
}

// ClientCount reports the number of connected telemetry clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TelemetryHandler streams snapshots to operator dashboards over
// WebSocket.
type TelemetryHandler struct {
	hub *Hub
}

// NewTelemetryHandler creates a handler bound to the hub.
func NewTelemetryHandler(hub *Hub) *TelemetryHandler {
	return &TelemetryHandler{hub: hub}
}

// ServeHTTP upgrades the connection and forwards snapshots until the
// client disconnects.
func (t *TelemetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id, ch := t.hub.subscribe()
	defer t.hub.unsubscribe(id)
	log.Printf("monitor: telemetry client %s connected", id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case snap := <-ch:
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
