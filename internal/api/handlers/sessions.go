package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/auth"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/observability"
	"github.com/ramsesyok/billiards/internal/session"
	"go.uber.org/zap"
)

// FrameCleaner drops cached frames of a deleted session.
type FrameCleaner interface {
	DeleteFrames(ctx context.Context, sessionID string) error
}

// StepRequest is the body of a step call.
type StepRequest struct {
	DT     float64 `json:"dt" binding:"required"`
	Frames int     `json:"frames"`
}

// bindShot reads an optional ShotRequest body. An empty body means the
// default break.
func bindShot(c *gin.Context) (session.ShotRequest, bool) {
	var req session.ShotRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shot: " + err.Error()})
		return req, false
	}
	return req, true
}

// CreateSession racks a new table and issues the token that controls it.
func CreateSession(m *session.Manager, issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindShot(c)
		if !ok {
			return
		}

		s, frame, err := m.Create(c.Request.Context(), req)
		if err != nil {
			respondSessionError(c, err)
			return
		}

		token, err := issuer.Issue(s.ID)
		if err != nil {
			observability.GetLogger().Named("api").Error("Failed to issue session token",
				zap.String("session_id", s.ID), zap.Error(err))
			_ = m.Delete(c.Request.Context(), s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session": s.Info(),
			"token":   token,
			"frame":   frame,
		})
	}
}

// GetSession returns a session summary and its current frame.
func GetSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("id"))
		if err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session": s.Info(),
			"frame":   s.Snapshot(),
		})
	}
}

// StepSession advances a session and shares the resulting frame with its
// watchers.
func StepSession(m *session.Manager, publisher session.FramePublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dt required"})
			return
		}
		if req.Frames == 0 {
			req.Frames = 1
		}

		id := c.Param("id")
		frame, err := m.Step(c.Request.Context(), id, req.DT, req.Frames)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		publish(c, publisher, id, frame)
		c.JSON(http.StatusOK, gin.H{"frame": frame})
	}
}

// ResetSession re-racks a session with a new shot.
func ResetSession(m *session.Manager, publisher session.FramePublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindShot(c)
		if !ok {
			return
		}

		id := c.Param("id")
		frame, err := m.Reset(c.Request.Context(), id, req)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		publish(c, publisher, id, frame)
		c.JSON(http.StatusOK, gin.H{"frame": frame})
	}
}

// DeleteSession ends a session. frames may be nil.
func DeleteSession(m *session.Manager, frames FrameCleaner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := m.Delete(c.Request.Context(), id); err != nil {
			respondSessionError(c, err)
			return
		}
		if frames != nil {
			if err := frames.DeleteFrames(c.Request.Context(), id); err != nil {
				observability.GetLogger().Named("api").Warn("Failed to drop cached frames",
					zap.String("session_id", id), zap.Error(err))
			}
		}
		c.Status(http.StatusNoContent)
	}
}

// publish shares a frame with the session's WebSocket watchers.
func publish(c *gin.Context, publisher session.FramePublisher, id string, frame game.Frame) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishFrame(c.Request.Context(), id, frame); err != nil {
		observability.GetLogger().Named("api").Warn("Failed to publish frame",
			zap.String("session_id", id), zap.Error(err))
	}
}
