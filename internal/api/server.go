// Package api implements the HTTP operation surface that translates
// externally-invoked operations into calls against the supervisor,
// accountant, exception store, and approval workflow, enforcing
// authentication per operation class (public/child/parent).
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/api/middleware"
	"dayguard/internal/core"
	"dayguard/internal/domain"
	"dayguard/internal/logging"
	"dayguard/internal/notify"
	"dayguard/internal/security"
	"dayguard/internal/storage"
)

// Server holds every dependency the HTTP handlers need.
type Server struct {
	Supervisor   *core.Supervisor
	Accountant   *core.Accountant
	Exceptions   *core.ExceptionStore
	Approvals    *core.ApprovalWorkflow
	Store        storage.Storage
	Sessions     *security.SessionStore
	RateLimit    *security.RateLimiter
	PasswordHash string
	Logger       *slog.Logger // Core stream
	AuditLogger  *slog.Logger // Audit stream
	WebSocket    *notify.WebSocketBackend
}

// NewRouter builds the gin.Engine with the full middleware chain and route
// table: request ID, recovery, noise filter, logging, and content type,
// ahead of the public/child/parent route groups.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.NoiseFilter())
	r.Use(middleware.Logging())
	r.Use(middleware.ContentType())

	public := r.Group("/")
	{
		public.POST("/auth/login", s.handleAuthenticateParent)
		public.GET("/profiles", s.handleListProfiles)
		public.GET("/profiles/active", s.handleGetActiveProfile)
		public.GET("/profiles/active/remaining-time", s.handleGetRemainingTime)
		public.GET("/profiles/active/applications/:app_id/allowed", s.handleCheckApplicationAllowed)
		public.POST("/activity", s.handleReportActivity)
		public.POST("/monitors/:monitor_id/heartbeat", s.handleSendHeartbeat)
		public.GET("/ws", s.handleWebSocket)
	}

	child := r.Group("/")
	child.Use(middleware.ChildAuth(s.Supervisor))
	{
		child.POST("/requests", s.handleSubmitApprovalRequest)
		child.POST("/requests/command", s.handleRequestCommandApproval)
	}

	parent := r.Group("/")
	parent.Use(middleware.ParentAuth(s.Sessions))
	{
		parent.POST("/auth/logout", s.handleRevokeSession)
		parent.POST("/profiles", s.handleCreateProfile)
		parent.POST("/profiles/:id/activate", s.handleSetActiveProfile)
		parent.POST("/profiles/:id/windows", s.handleAddTimeWindow)
		parent.DELETE("/profiles/:id/windows", s.handleRemoveTimeWindow)
		parent.GET("/profiles/:id/windows", s.handleListTimeWindows)
		parent.DELETE("/profiles/:id/windows/all", s.handleClearTimeWindows)
		parent.GET("/requests/pending", s.handleListPendingRequests)
		parent.POST("/requests/:id/approve", s.handleApproveRequest)
		parent.POST("/requests/:id/deny", s.handleDenyRequest)
		parent.GET("/exceptions", s.handleListActiveExceptions)
		parent.DELETE("/exceptions/:id", s.handleRevokeException)
		parent.GET("/reports/daily", s.handleGetDailyReport)
		parent.GET("/reports/weekly", s.handleGetWeeklyReport)
		parent.GET("/reports/export", s.handleExportReports)
	}

	return r
}

// audited runs fn under the generic audit wrapper, using the Audit stream
// logger and "now" at call time.
func audited[T any](c *gin.Context, s *Server, actor domain.Actor, action, resource, resourceID string, fn func() (T, error)) (T, error) {
	return logging.Audited(c.Request.Context(), s.AuditLogger, s.Store, actor, action, resource, resourceID, time.Now(), fn)
}

// auditedNoResult is audited for handlers whose operation returns only an error.
func auditedNoResult(c *gin.Context, s *Server, actor domain.Actor, action, resource, resourceID string, fn func() error) error {
	return logging.AuditedNoResult(c.Request.Context(), s.AuditLogger, s.Store, actor, action, resource, resourceID, time.Now(), fn)
}
