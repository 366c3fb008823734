package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionValidator is the subset of security.SessionStore the middleware
// needs; kept narrow so internal/api/middleware does not import
// internal/security.
type SessionValidator interface {
	Validate(token string, now time.Time) bool
}

const parentTokenContextKey = "parent_token"

// ParentAuth requires a valid bearer session token, the way validate_session(token) gates every parent
// operation before any side effect.
func ParentAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header || !sessions.Validate(token, time.Now()) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			c.Abort()
			return
		}
		c.Set(parentTokenContextKey, token)
		c.Next()
	}
}

// ParentToken returns the bearer token validated by ParentAuth.
func ParentToken(c *gin.Context) string {
	v, _ := c.Get(parentTokenContextKey)
	token, _ := v.(string)
	return token
}
