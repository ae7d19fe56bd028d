package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/session"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Simulator is the part of the session manager clients can drive.
type Simulator interface {
	Snapshot(sessionID string) (game.Frame, error)
	Step(ctx context.Context, sessionID string, dt float64, frames int) (game.Frame, error)
	Reset(ctx context.Context, sessionID string, req session.ShotRequest) (game.Frame, error)
}

// StepData is the payload of a step message.
type StepData struct {
	DT     float64 `json:"dt"`
	Frames int     `json:"frames"`
}

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	sim       Simulator
	publisher session.FramePublisher
	send      chan []byte
	logger    *zap.Logger
}

// HandleWebSocket upgrades the request and streams the :id session's frames.
// Callers authenticate the session before this handler runs.
func HandleWebSocket(hub *Hub, sim Simulator, publisher session.FramePublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		frame, err := sim.Snapshot(sessionID)
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Warn("Upgrade error", zap.Error(err))
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			sessionID: sessionID,
			sim:       sim,
			publisher: publisher,
			send:      make(chan []byte, sendBuffer),
			logger:    hub.logger.With(zap.String("session_id", sessionID)),
		}
		if data, err := json.Marshal(OutboundMessage{Type: TypeFrame, Data: frame}); err == nil {
			client.send <- data
		}
		if !hub.Register(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("WebSocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("WebSocket ping error", zap.Error(err))
				return
			}
		}
	}
}

// readPump reads client messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes one client message.
func (c *Client) handleMessage(msg WSMessage) {
	ctx := context.Background()

	switch msg.Type {
	case "get_state":
		frame, err := c.sim.Snapshot(c.sessionID)
		if err != nil {
			c.sendError("Session not found")
			return
		}
		c.hub.sendTo(c, OutboundMessage{Type: TypeFrame, Data: frame})

	case "step":
		var data StepData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid step data")
			return
		}
		if data.Frames == 0 {
			data.Frames = 1
		}
		frame, err := c.sim.Step(ctx, c.sessionID, data.DT, data.Frames)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.publish(ctx, frame)

	case "reset":
		var req session.ShotRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				c.sendError("Invalid shot data")
				return
			}
		}
		frame, err := c.sim.Reset(ctx, c.sessionID, req)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.publish(ctx, frame)

	default:
		c.sendError("Unknown message type")
	}
}

// publish shares a frame with every watcher of the session.
func (c *Client) publish(ctx context.Context, frame game.Frame) {
	if err := c.publisher.PublishFrame(ctx, c.sessionID, frame); err != nil {
		c.logger.Warn("Failed to publish frame", zap.Error(err))
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.hub.sendTo(c, OutboundMessage{Type: TypeError, Message: message})
}
