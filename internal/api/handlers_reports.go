package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dayguard/internal/domain"
)

// handleGetDailyReport implements get_daily_report(profile, YYYY-MM-DD)
//.
func (s *Server) handleGetDailyReport(c *gin.Context) {
	profileID := c.Query("profile")
	date := c.Query("date")
	sum, err := s.Store.GetDailySummary(c.Request.Context(), profileID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sum == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no summary for that date"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// handleGetWeeklyReport implements get_weekly_report(profile, YYYY-MM-DD),
// annotated with exception usage stats folded into the same response
// rather than exposed as a separate operation.
func (s *Server) handleGetWeeklyReport(c *gin.Context) {
	profileID := c.Query("profile")
	weekStart := c.Query("week_start")
	sum, err := s.Store.GetWeeklySummary(c.Request.Context(), profileID, weekStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sum == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no summary for that week"})
		return
	}

	since, perr := time.Parse("2006-01-02", weekStart)
	if perr != nil {
		c.JSON(http.StatusOK, sum)
		return
	}
	total, used, active, uerr := s.Exceptions.UsageStats(c.Request.Context(), profileID, since, time.Now())
	if uerr != nil {
		c.JSON(http.StatusOK, sum)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": sum,
		"exception_stats": gin.H{
			"total":  total,
			"used":   used,
			"active": active,
		},
	})
}

// handleExportReports implements export_reports(profile, format, start, end);
// format is one of json or csv. The csv branch follows the flat shape
// "date,used_seconds,limit_seconds,exceeded".
func (s *Server) handleExportReports(c *gin.Context) {
	profileID := c.Query("profile")
	format := c.DefaultQuery("format", "json")
	startStr, endStr := c.Query("start"), c.Query("end")

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
		return
	}

	profile, err := s.Store.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	type exportRow struct {
		summary *domain.DailySummary
		limit   int64
	}
	var rows []exportRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		sum, err := s.Store.GetDailySummary(c.Request.Context(), profileID, d.Format("2006-01-02"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if sum == nil {
			sum = &domain.DailySummary{ProfileID: profileID, Date: d.Format("2006-01-02")}
		}
		rows = append(rows, exportRow{summary: sum, limit: domain.DailyLimitSeconds(profile.Config.ScreenTime, nil, d)})
	}

	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		w := csv.NewWriter(c.Writer)
		_ = w.Write([]string{"date", "used_seconds", "limit_seconds", "exceeded"})
		for _, row := range rows {
			exceeded := row.summary.TotalSeconds >= row.limit
			_ = w.Write([]string{
				row.summary.Date,
				strconv.FormatInt(row.summary.TotalSeconds, 10),
				strconv.FormatInt(row.limit, 10),
				strconv.FormatBool(exceeded),
			})
		}
		w.Flush()
	case "json":
		summaries := make([]*domain.DailySummary, len(rows))
		for i, row := range rows {
			summaries[i] = row.summary
		}
		c.Header("Content-Type", "application/json")
		_ = json.NewEncoder(c.Writer).Encode(summaries)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", format)})
	}
}
