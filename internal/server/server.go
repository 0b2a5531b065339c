// Package server provides the HTTP server for the shadowbox boxing demo.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/shadowbox/internal/app"
	"github.com/ayusman/shadowbox/internal/detector"
	"github.com/ayusman/shadowbox/internal/server/api"
	"github.com/ayusman/shadowbox/internal/store"
	"github.com/ayusman/shadowbox/internal/tracker"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the shadowbox application.
type Server struct {
	config Config
	mux    *http.ServeMux
	state  *StateHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)

		actionHandler := api.NewActionHandler(s.config.Store)
		s.mux.Handle("/api/actions", actionHandler)
		s.mux.Handle("/api/actions/", actionHandler)
	}

	if s.config.App != nil {
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.App.Tracker(), s.config.Store))
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
		s.mux.HandleFunc("/api/plugins", s.handlePlugins)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App.Camera()))

		s.state = NewStateHandler(s.config.App)
		s.mux.Handle("/api/ws", s.state)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	writeJSON(w, http.StatusOK, response)
}

// stateResponse is the REST view of the live pipeline, mirroring the
// WebSocket state message.
type stateResponse struct {
	Enabled         bool              `json:"enabled"`
	Stance          string            `json:"stance"`
	StanceHeldMs    int64             `json:"stanceHeldMs"`
	MotionThreshold float64           `json:"motionThreshold"`
	Left            tracker.HandState `json:"left"`
	Right           tracker.HandState `json:"right"`
}

// handleState handles GET requests to /api/state with a one-shot snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a := s.config.App
	response := stateResponse{
		Enabled:         a.IsEnabled(),
		Stance:          string(a.Avatar().Current()),
		StanceHeldMs:    a.Avatar().Held().Milliseconds(),
		MotionThreshold: a.MotionDetector().Threshold(),
		Left:            a.Tracker().Snapshot(detector.SideLeft),
		Right:           a.Tracker().Snapshot(detector.SideRight),
	}
	writeJSON(w, http.StatusOK, response)
}

// handleTracking handles POST requests to /api/tracking to pause or resume
// the pipeline without tearing it down.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.config.App.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// handlePlugins handles GET requests to /api/plugins and lists discovered
// plugin manifests.
func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := s.config.App.PluginManager().List()
	manifests := make([]interface{}, 0, len(plugins))
	for _, p := range plugins {
		manifests = append(manifests, p.Manifest)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plugins": manifests})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
