package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/api/middleware"
	"dayguard/internal/domain"
)

type submitRequestBody struct {
	Type    string               `json:"type" binding:"required"`
	Details domain.RequestDetail `json:"details"`
}

// handleSubmitApprovalRequest implements submit_approval_request(type, details)
//.
func (s *Server) handleSubmitApprovalRequest(c *gin.Context) {
	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profileID, _ := c.Get("active_profile_id")
	req, err := s.Approvals.Submit(c.Request.Context(), profileID.(string), domain.RequestKind(body.Type), body.Details, time.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

type commandApprovalBody struct {
	Command string   `json:"command" binding:"required"`
	Risk    string   `json:"risk"`
	Reasons []string `json:"reasons"`
}

// handleRequestCommandApproval implements
// request_command_approval(command, risk, reasons); produces
// a pending request of type terminal-command.
func (s *Server) handleRequestCommandApproval(c *gin.Context) {
	var body commandApprovalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profileID, _ := c.Get("active_profile_id")
	req, err := s.Approvals.Submit(c.Request.Context(), profileID.(string), domain.RequestTerminalCommand, domain.RequestDetail{
		Command: body.Command,
		Risk:    body.Risk,
		Reasons: body.Reasons,
	}, time.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// handleListPendingRequests implements list_pending_requests.
func (s *Server) handleListPendingRequests(c *gin.Context) {
	profileID := c.Query("profile_id")
	reqs, err := s.Approvals.ListPending(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

type reviewBody struct {
	Message string `json:"message"`
}

// handleApproveRequest implements approve_request(id, message),
// atomically minting the resulting exception.
func (s *Server) handleApproveRequest(c *gin.Context) {
	id := c.Param("id")
	var body reviewBody
	_ = c.ShouldBindJSON(&body)

	exc, err := audited(c, s, domain.ActorParent, "approve_request", "approval_request", id, func() (*domain.Exception, error) {
		return s.Approvals.Approve(c.Request.Context(), id, parentActor(c), body.Message, time.Now())
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, exc)
}

// handleDenyRequest implements deny_request(id, message).
func (s *Server) handleDenyRequest(c *gin.Context) {
	id := c.Param("id")
	var body reviewBody
	_ = c.ShouldBindJSON(&body)

	err := auditedNoResult(c, s, domain.ActorParent, "deny_request", "approval_request", id, func() error {
		return s.Approvals.Deny(c.Request.Context(), id, parentActor(c), body.Message)
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleListActiveExceptions implements list_active_exceptions.
func (s *Server) handleListActiveExceptions(c *gin.Context) {
	profileID := c.Query("profile_id")
	excs, err := s.Exceptions.LiveExceptions(c.Request.Context(), profileID, time.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, excs)
}

// handleRevokeException implements revoke_exception(id).
func (s *Server) handleRevokeException(c *gin.Context) {
	id := c.Param("id")
	err := auditedNoResult(c, s, domain.ActorParent, "revoke_exception", "exception", id, func() error {
		return s.Exceptions.Revoke(c.Request.Context(), id)
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func parentActor(c *gin.Context) string {
	return "parent:" + middleware.ParentToken(c)
}
