package monitor

import (
	"fmt"
	"net/http"
	"time"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

// StreamHandler serves an MJPEG preview of the kiosk's processed frames.
// It reads the tick loop's published JPEGs from the hub rather than
// opening the camera itself, so an attached operator never competes
// with the interaction pipeline for device reads.
type StreamHandler struct {
	hub      *Hub
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler over the hub's frame slot.
func NewStreamHandler(hub *Hub) *StreamHandler {
	return &StreamHandler{hub: hub, interval: streamInterval}
}

// ServeHTTP streams each new published frame as a multipart JPEG part
// until the client disconnects. Frames already sent are skipped by
// sequence number; a quiet hub just keeps the connection idle.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.hub.addViewer()
	defer h.hub.removeViewer()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(h.interval):
		}

		data, seq := h.hub.LatestFrame()
		if data == nil || seq == lastSeq {
			continue
		}
		lastSeq = seq

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
