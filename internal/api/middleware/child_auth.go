package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActiveProfileChecker reports whether a profile is currently active,
// returning its id.
type ActiveProfileChecker interface {
	ActiveProfileID() (string, bool)
}

// ChildAuth requires no credential but does require an active profile
//.
func ChildAuth(checker ActiveProfileChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := checker.ActiveProfileID()
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "no active profile"})
			c.Abort()
			return
		}
		c.Set("active_profile_id", id)
		c.Next()
	}
}
