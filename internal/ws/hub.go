package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/observability"
	"go.uber.org/zap"
)

// Message types sent to clients.
const (
	TypeFrame = "frame"
	TypeError = "error"
)

// OutboundMessage is the envelope of every message sent to a client.
type OutboundMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WSMessage is a message received from a client.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Hub maintains the set of active clients, grouped by session.
type Hub struct {
	rooms   map[string]map[*Client]struct{} // sessionID -> clients
	stopped bool
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: observability.GetLogger().Named("ws"),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client and
// refuses new ones.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	h.stopped = true
	for sessionID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, sessionID)
	}
	h.mu.Unlock()
	h.logger.Info("Hub stopped")
	return nil
}

// Register adds c to its session room. It reports false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.sessionID] = room
	}
	room[c] = struct{}{}
	size := len(room)
	h.mu.Unlock()

	h.logger.Info("Client connected", zap.String("session_id", c.sessionID), zap.Int("room_size", size))
	return true
}

// Unregister removes c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if ok {
		if _, ok = room[c]; ok {
			delete(room, c)
			close(c.send)
			if len(room) == 0 {
				delete(h.rooms, c.sessionID)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		h.logger.Info("Client disconnected", zap.String("session_id", c.sessionID))
	}
}

// BroadcastToSession sends a message to every client watching a session.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	h.broadcastRaw(sessionID, data)
}

func (h *Hub) broadcastRaw(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
		default:
			// Client's buffer is full
			h.logger.Warn("Client send buffer full, dropping message", zap.String("session_id", sessionID))
		}
	}
}

// sendTo queues a message for a single registered client.
func (h *Hub) sendTo(c *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.rooms[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Client send buffer full, dropping message", zap.String("session_id", c.sessionID))
	}
}

// PublishFrame broadcasts a frame to the session's clients.
func (h *Hub) PublishFrame(_ context.Context, sessionID string, frame game.Frame) error {
	h.BroadcastToSession(sessionID, OutboundMessage{Type: TypeFrame, Data: frame})
	return nil
}

// relayFrame broadcasts a frame that is already JSON encoded.
func (h *Hub) relayFrame(sessionID string, payload []byte) {
	data, err := json.Marshal(OutboundMessage{Type: TypeFrame, Data: json.RawMessage(payload)})
	if err != nil {
		h.logger.Warn("Invalid frame payload", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	h.broadcastRaw(sessionID, data)
}

// ClientCount returns the number of clients watching a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
