package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ramsesyok/billiards/internal/auth"
)

// SessionIDKey is the gin context key holding the authenticated session.
const SessionIDKey = "session_id"

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter used by WebSocket clients.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// SessionAuth requires a session token whose session matches the :id path
// parameter.
func SessionAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		sessionID, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if id := c.Param("id"); id != "" && id != sessionID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant access to this session"})
			return
		}
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}
