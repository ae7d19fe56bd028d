package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/models"
	"github.com/ramsesyok/billiards/internal/observability"
	"github.com/ramsesyok/billiards/internal/session"
	"github.com/ramsesyok/billiards/internal/store"
	"go.uber.org/zap"
)

// RunReader reads the simulation run log.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*models.SimulationRun, error)
	RecentRuns(ctx context.Context, limit int) ([]models.SimulationRun, error)
}

// GetAdminSessions lists every live session
func GetAdminSessions(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := m.List()
		c.JSON(http.StatusOK, gin.H{
			"sessions": sessions,
			"total":    len(sessions),
		})
	}
}

// GetAdminRuns returns the most recent runs. runs may be nil when no
// database is configured.
func GetAdminRuns(runs RunReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if runs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run log not configured"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 {
			limit = 50
		}
		if limit > 500 {
			limit = 500
		}

		list, err := runs.RecentRuns(c.Request.Context(), limit)
		if err != nil {
			observability.GetLogger().Named("admin").Error("Failed to fetch runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"runs":  list,
			"limit": limit,
		})
	}
}

// GetAdminRun returns a single run
func GetAdminRun(runs RunReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if runs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run log not configured"})
			return
		}

		run, err := runs.GetRun(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		if err != nil {
			observability.GetLogger().Named("admin").Error("Failed to fetch run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}
