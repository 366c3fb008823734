package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDKey = "X-Request-ID"

// httpRequestIDPrefix distinguishes a transport-level request ID from an
// ApprovalRequest's req_ entity ID (internal/idgen) in shared audit/log output.
const httpRequestIDPrefix = "htreq_"

// RequestID injects a unique request ID into each request context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if requestID == "" {
			requestID = httpRequestIDPrefix + uuid.New().String()
		}
		c.Header(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		c.Next()
	}
}
