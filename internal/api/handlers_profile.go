package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
	"dayguard/internal/idgen"
)

type createProfileRequest struct {
	Name     string  `json:"name" binding:"required"`
	AgeGroup string  `json:"age_group" binding:"required"`
	Username *string `json:"username,omitempty"`
}

// handleCreateProfile implements create_profile(name, age_group, username?)
//.
func (s *Server) handleCreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	profile, err := audited(c, s, domain.ActorParent, "create_profile", "profile", "", func() (*domain.Profile, error) {
		p := &domain.Profile{
			Name:      req.Name,
			Username:  req.Username,
			AgeGroup:  domain.AgeGroup(req.AgeGroup),
			Config:    domain.DefaultProfileConfig(),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		p.ID = idgen.NewProfile()
		return p, s.Store.CreateProfile(c.Request.Context(), p)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// handleSetActiveProfile implements set_active_profile(id).
func (s *Server) handleSetActiveProfile(c *gin.Context) {
	id := c.Param("id")
	profile, err := audited(c, s, domain.ActorParent, "set_active_profile", "profile", id, func() (*domain.Profile, error) {
		return s.Supervisor.SetActiveProfile(c.Request.Context(), id, time.Now())
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleListProfiles implements list_profiles.
func (s *Server) handleListProfiles(c *gin.Context) {
	profiles, err := s.Store.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// handleGetActiveProfile implements get_active_profile.
func (s *Server) handleGetActiveProfile(c *gin.Context) {
	profile := s.Supervisor.ActiveProfile()
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleGetRemainingTime implements get_remaining_time.
func (s *Server) handleGetRemainingTime(c *gin.Context) {
	profile := s.Supervisor.ActiveProfile()
	if profile == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no active profile"})
		return
	}
	now := time.Now()
	exceptions, err := s.Exceptions.LiveExceptions(c.Request.Context(), profile.ID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	remaining, err := s.Accountant.RemainingSeconds(c.Request.Context(), profile, exceptions, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// handleCheckApplicationAllowed implements check_application_allowed(app_id),
// composing the policy decision engine via the supervisor's Decide.
func (s *Server) handleCheckApplicationAllowed(c *gin.Context) {
	appID := c.Param("app_id")
	decision, err := s.Supervisor.Decide(c.Request.Context(), domain.ActivityEvent{
		Kind: domain.EventWindowFocused,
		AppID: appID,
	}, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, decision)
}

// handleReportActivity implements report_activity(json).
func (s *Server) handleReportActivity(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	if err := s.Supervisor.ReportActivity(c.Request.Context(), body); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

// handleSendHeartbeat implements send_heartbeat(monitor_id).
func (s *Server) handleSendHeartbeat(c *gin.Context) {
	s.Supervisor.SendHeartbeat(c.Param("monitor_id"), time.Now())
	c.Status(http.StatusNoContent)
}

// handleWebSocket upgrades to a websocket connection used for live
// notification push, wired to the notify.WebSocketBackend registered with
// the Notification Manager.
func (s *Server) handleWebSocket(c *gin.Context) {
	if s.WebSocket == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "websocket notifications not configured"})
		return
	}
	if err := s.WebSocket.Upgrade(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return http.StatusNotFound
	case apperr.Is(err, apperr.KindConflict):
		return http.StatusConflict
	case apperr.Is(err, apperr.KindInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
