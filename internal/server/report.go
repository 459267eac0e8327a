package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) bindEntryFilter(c *gin.Context) (timeentrydomain.Filter, bool) {
	var filter timeentrydomain.Filter

	if raw := strings.TrimSpace(c.Query("client_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
			return filter, false
		}
		filter.ClientID = &id
	}

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start date"))
			return filter, false
		}
		start := timeentrydomain.DayStart(t)
		filter.StartDate = &start
	}

	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end date"))
			return filter, false
		}
		end := timeentrydomain.DayEnd(t)
		filter.EndDate = &end
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		AbortWithError(c, newValidationError("end_date", "invalid_date_range", "end date precedes start date"))
		return filter, false
	}

	switch order := strings.ToLower(strings.TrimSpace(c.Query("order"))); order {
	case "":
	case string(timeentrydomain.SortAscending), string(timeentrydomain.SortDescending):
		filter.Order = timeentrydomain.SortDirection(order)
	default:
		AbortWithError(c, newValidationError("order", "invalid_order", "invalid order"))
		return filter, false
	}

	return filter, true
}

// GetReport handles GET /api/v1/reports
func (s *Server) GetReport(c *gin.Context) {
	filter, ok := s.bindEntryFilter(c)
	if !ok {
		return
	}

	report, err := s.reportSvc.BuildReport(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, report)
}

// ExportReport handles GET /api/v1/reports/export
func (s *Server) ExportReport(c *gin.Context) {
	filter, ok := s.bindEntryFilter(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	report, err := s.reportSvc.BuildReport(ctx, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.reportSvc.ExportCSV(ctx, report)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("X-Report-Export-Checksum", result.Checksum)
	c.Header("X-Report-Export-Count", strconv.Itoa(result.Count))
	c.Header("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	c.Data(http.StatusOK, "text/csv", result.Data)
}
