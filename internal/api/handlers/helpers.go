package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/observability"
	"github.com/ramsesyok/billiards/internal/session"
	"go.uber.org/zap"
)

// respondSessionError maps session errors to HTTP responses.
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrLimitReached):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many active sessions"})
	case errors.Is(err, session.ErrInvalidShot), errors.Is(err, session.ErrInvalidStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		observability.GetLogger().Named("api").Error("Unhandled session error",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
