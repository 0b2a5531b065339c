package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/shadowbox/internal/app"
	"github.com/ayusman/shadowbox/internal/detector"
	"github.com/ayusman/shadowbox/internal/stance"
	"github.com/ayusman/shadowbox/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler streams the live pipeline state over WebSocket. Periodic
// state frames carry both hand snapshots and the current stance; punch and
// stance events are pushed the moment they happen.
type StateHandler struct {
	app     *app.App
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStateHandler creates a StateHandler bound to the application and hooks
// it into the punch and stance event streams.
func NewStateHandler(a *app.App) *StateHandler {
	h := &StateHandler{
		app:     a,
		clients: make(map[*websocket.Conn]bool),
	}

	a.Tracker().OnPunch(h.pushPunch)
	a.OnStance(h.pushStance)

	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes a full state frame to every client at display rate.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		h.send(map[string]any{
			"type":      "state",
			"enabled":   h.app.IsEnabled(),
			"stance":    h.app.Avatar().Current(),
			"left":      h.app.Tracker().Snapshot(detector.SideLeft),
			"right":     h.app.Tracker().Snapshot(detector.SideRight),
			"timestamp": time.Now().UnixMilli(),
		})
	}
}

// pushPunch forwards a punch event to all clients immediately.
func (h *StateHandler) pushPunch(ev tracker.PunchEvent) {
	h.send(map[string]any{
		"type":      "punch",
		"side":      ev.Side,
		"power":     ev.Power,
		"velocity":  ev.Velocity,
		"isFist":    ev.IsFist,
		"timestamp": ev.Time.UnixMilli(),
	})
}

// pushStance forwards a stance change to all clients immediately.
func (h *StateHandler) pushStance(v stance.Stance) {
	h.send(map[string]any{
		"type":      "stance",
		"stance":    v,
		"timestamp": time.Now().UnixMilli(),
	})
}

// send writes one message to every client. The exclusive lock serializes
// the periodic broadcaster with the event pushers; a websocket connection
// tolerates only one writer at a time.
func (h *StateHandler) send(payload map[string]any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
