package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/api/handlers"
	"github.com/ramsesyok/billiards/internal/auth"
	"github.com/ramsesyok/billiards/internal/config"
	"github.com/ramsesyok/billiards/internal/middleware"
	"github.com/ramsesyok/billiards/internal/session"
	"github.com/ramsesyok/billiards/internal/ws"
)

// Dependencies are the services the routes are served from. Frames and Runs
// are nil when Redis or Postgres is not configured.
type Dependencies struct {
	Config    *config.Config
	Sessions  *session.Manager
	Issuer    *auth.Issuer
	Hub       *ws.Hub
	Publisher session.FramePublisher
	Frames    handlers.FrameCleaner
	Runs      handlers.RunReader
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.CORSMiddleware(deps.Config))

	if !deps.Config.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(deps.Sessions))
		v1.GET("/presets", handlers.ListPresets(deps.Sessions))

		v1.POST("/sessions", handlers.CreateSession(deps.Sessions, deps.Issuer))

		sessions := v1.Group("/sessions/:id", middleware.SessionAuth(deps.Issuer))
		{
			sessions.GET("", handlers.GetSession(deps.Sessions))
			sessions.POST("/step", handlers.StepSession(deps.Sessions, deps.Publisher))
			sessions.POST("/reset", handlers.ResetSession(deps.Sessions, deps.Publisher))
			sessions.DELETE("", handlers.DeleteSession(deps.Sessions, deps.Frames))
			sessions.GET("/ws",
				middleware.WebSocketCORSCheck(deps.Config),
				ws.HandleWebSocket(deps.Hub, deps.Sessions, deps.Publisher))
		}

		admin := v1.Group("/admin", middleware.AdminAuth(deps.Config.AdminTokenHash))
		{
			admin.GET("/sessions", handlers.GetAdminSessions(deps.Sessions))
			admin.GET("/runs", handlers.GetAdminRuns(deps.Runs))
			admin.GET("/runs/:id", handlers.GetAdminRun(deps.Runs))
		}
	}
}
