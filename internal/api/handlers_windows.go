package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
)

type windowRequest struct {
	DayKind string `json:"day_kind" binding:"required"` // weekday/weekend/holiday
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
}

func windowsFieldFor(cfg *domain.ScreenTimeConfig, kind string) (*[]domain.TimeWindow, error) {
	switch domain.DayKind(kind) {
	case domain.DayWeekday:
		return &cfg.Windows.Weekday, nil
	case domain.DayWeekend:
		return &cfg.Windows.Weekend, nil
	case domain.DayHoliday:
		return &cfg.Windows.Holiday, nil
	default:
		return nil, apperr.Input("unknown day_kind %q", kind)
	}
}

// handleAddTimeWindow implements add_time_window, rejecting
// overlaps per.
func (s *Server) handleAddTimeWindow(c *gin.Context) {
	id := c.Param("id")
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := audited(c, s, domain.ActorParent, "add_time_window", "profile", id, func() (*domain.Profile, error) {
		p, perr := s.Store.GetProfile(c.Request.Context(), id)
		if perr != nil {
			return nil, apperr.Storage(perr, "loading profile")
		}
		if p == nil {
			return nil, apperr.NotFound("profile %s not found", id)
		}
		field, ferr := windowsFieldFor(&p.Config.ScreenTime, req.DayKind)
		if ferr != nil {
			return nil, ferr
		}
		updated, aerr := domain.AddWindow(*field, domain.TimeWindow{Start: req.Start, End: req.End})
		if aerr != nil {
			return nil, apperr.Input("%v", aerr)
		}
		*field = updated
		p.UpdatedAt = time.Now()
		return p, s.Store.UpdateProfile(c.Request.Context(), p)
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleRemoveTimeWindow implements remove_time_window.
func (s *Server) handleRemoveTimeWindow(c *gin.Context) {
	id := c.Param("id")
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := audited(c, s, domain.ActorParent, "remove_time_window", "profile", id, func() (*domain.Profile, error) {
		p, perr := s.Store.GetProfile(c.Request.Context(), id)
		if perr != nil {
			return nil, apperr.Storage(perr, "loading profile")
		}
		if p == nil {
			return nil, apperr.NotFound("profile %s not found", id)
		}
		field, ferr := windowsFieldFor(&p.Config.ScreenTime, req.DayKind)
		if ferr != nil {
			return nil, ferr
		}
		*field = domain.RemoveWindow(*field, domain.TimeWindow{Start: req.Start, End: req.End})
		p.UpdatedAt = time.Now()
		return p, s.Store.UpdateProfile(c.Request.Context(), p)
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleListTimeWindows implements list_time_windows.
func (s *Server) handleListTimeWindows(c *gin.Context) {
	id := c.Param("id")
	p, err := s.Store.GetProfile(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, p.Config.ScreenTime.Windows)
}

// handleClearTimeWindows implements clear_time_windows.
func (s *Server) handleClearTimeWindows(c *gin.Context) {
	id := c.Param("id")
	_, err := audited(c, s, domain.ActorParent, "clear_time_windows", "profile", id, func() (*domain.Profile, error) {
		p, perr := s.Store.GetProfile(c.Request.Context(), id)
		if perr != nil {
			return nil, apperr.Storage(perr, "loading profile")
		}
		if p == nil {
			return nil, apperr.NotFound("profile %s not found", id)
		}
		p.Config.ScreenTime.Windows = domain.WindowSet{}
		p.UpdatedAt = time.Now()
		return p, s.Store.UpdateProfile(c.Request.Context(), p)
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
