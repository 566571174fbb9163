// Package monitor provides the operator-facing HTTP server: a health
// endpoint, the latest pipeline snapshot, a live telemetry WebSocket,
// an MJPEG preview of the processed frames, and remote key injection
// for maintenance.
package monitor

import (
	"encoding/json"
	"net/http"
	"time"
)

// Config holds the monitor server configuration. Nil fields disable
// their endpoints.
type Config struct {
	StaticDir string
	Hub       *Hub
	// OnKey injects an operator key event into the kiosk tick loop.
	OnKey func(char rune, sym string)
}

// Server is the operator HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Hub != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/telemetry", NewTelemetryHandler(s.config.Hub))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Hub))
	}

	if s.config.OnKey != nil {
		s.mux.HandleFunc("/api/key", s.handleKey)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, ok := s.config.Hub.Latest()
	if !ok {
		http.Error(w, "No snapshot yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type keyRequest struct {
	Char string `json:"char"`
	Sym  string `json:"sym"`
}

// handleKey accepts POST {"char": "5"} or {"sym": "Return"} and feeds
// the event into the kiosk as if typed locally.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var char rune
	for _, ch := range req.Char {
		char = ch
		break
	}
	if char == 0 && req.Sym == "" {
		http.Error(w, "Empty key event", http.StatusBadRequest)
		return
	}

	s.config.OnKey(char, req.Sym)
	w.WriteHeader(http.StatusNoContent)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
