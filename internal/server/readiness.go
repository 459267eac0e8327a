package server

import (
	"errors"
	"net/http"
	"strconv"

	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/gin-gonic/gin"
)

type ReadinessState string

const (
	ReadinessStateReady    ReadinessState = "ready"
	ReadinessStateNotReady ReadinessState = "not_ready"
	ReadinessStateOptional ReadinessState = "optional"
)

type ReadinessIssue struct {
	ID       string            `json:"id"`
	Status   ReadinessState    `json:"status"`
	Evidence map[string]string `json:"evidence,omitempty"`
}

type ReadinessResponse struct {
	SystemState ReadinessState   `json:"system_state"`
	Issues      []ReadinessIssue `json:"issues"`
}

// Healthz reports process liveness only.
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz verifies the store can actually serve billing queries: connection,
// time-entry schema, and the invoice counter table.
func (s *Server) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	issues := []ReadinessIssue{}
	isSystemReady := true

	// 1. Database reachable
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		isSystemReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "database_reachable",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{
			ID:     "database_reachable",
			Status: ReadinessStateReady,
		})
	}

	// 2. Time-entry schema supports filtered, ordered loads
	count, err := s.entryRepo.CountEntries(ctx, timeentrydomain.Filter{})
	if err != nil {
		isSystemReady = false
		status := ReadinessStateNotReady
		evidence := map[string]string{"error": err.Error()}
		if errors.Is(err, timeentrydomain.ErrCapabilityMissing) {
			evidence["hint"] = "run migrations"
		}
		issues = append(issues, ReadinessIssue{
			ID:       "time_entry_schema",
			Status:   status,
			Evidence: evidence,
		})
	} else {
		issues = append(issues, ReadinessIssue{
			ID:       "time_entry_schema",
			Status:   ReadinessStateReady,
			Evidence: map[string]string{"entries": strconv.FormatInt(count, 10)},
		})
	}

	// 3. Invoice counter table present
	var counter sequencedomain.InvoiceCounter
	if err := s.db.WithContext(ctx).Limit(1).Find(&counter).Error; err != nil {
		isSystemReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "invoice_counter_table",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{
			ID:     "invoice_counter_table",
			Status: ReadinessStateReady,
		})
	}

	// 4. Clients present (optional, an empty book is valid)
	clientCount, err := s.clientRepo.Count(ctx)
	if err == nil && clientCount > 0 {
		issues = append(issues, ReadinessIssue{
			ID:       "clients_present",
			Status:   ReadinessStateReady,
			Evidence: map[string]string{"clients": strconv.FormatInt(clientCount, 10)},
		})
	} else {
		issues = append(issues, ReadinessIssue{
			ID:     "clients_present",
			Status: ReadinessStateOptional,
		})
	}

	state := ReadinessStateReady
	httpStatus := http.StatusOK
	if !isSystemReady {
		state = ReadinessStateNotReady
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, ReadinessResponse{
		SystemState: state,
		Issues:      issues,
	})
}
