package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/api/middleware"
	"dayguard/internal/domain"
	"dayguard/internal/security"
)

type authenticateRequest struct {
	Password string `json:"password" binding:"required"`
}

// handleAuthenticateParent implements authenticate_parent(password) -> token
//. On success returns a new token and writes a success audit
// row; on failure writes a failure audit row and fails InvalidCredential.
func (s *Server) handleAuthenticateParent(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	now := time.Now()
	token, err := audited(c, s, domain.ActorParent, "authenticate_parent", "session", "", func() (string, error) {
		if !s.RateLimit.Allowed(now) {
			return "", errAuthThrottled
		}
		ok, verr := security.VerifyPassword(req.Password, s.PasswordHash)
		if verr != nil {
			return "", verr
		}
		if !ok {
			s.RateLimit.RecordFailure(now)
			return "", errInvalidCredential
		}
		s.RateLimit.RecordSuccess()
		return s.Sessions.Create(now)
	})

	if err != nil {
		status := http.StatusUnauthorized
		if err == errAuthThrottled {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// handleRevokeSession implements revoke_session(token) -> bool.
func (s *Server) handleRevokeSession(c *gin.Context) {
	token := middleware.ParentToken(c)
	existed, _ := audited(c, s, domain.ActorParent, "revoke_session", "session", "", func() (bool, error) {
		return s.Sessions.Revoke(token), nil
	})
	c.JSON(http.StatusOK, gin.H{"revoked": existed})
}
