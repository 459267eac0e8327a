package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
}

// AbortWithError translates domain errors into HTTP responses. Capability
// errors become 412 with provisioning guidance so the client can distinguish
// a missing schema from a transient failure.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrInvalidPolicy),
		errors.Is(err, billingdomain.ErrEmptySelection),
		errors.Is(err, billingdomain.ErrNoLineItems):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "invalid_request",
			"message": err.Error(),
		}})
	case errors.Is(err, billingdomain.ErrClientNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "not_found",
			"message": err.Error(),
		}})
	case errors.Is(err, timeentrydomain.ErrCapabilityMissing):
		c.AbortWithStatusJSON(http.StatusPreconditionFailed, gin.H{"error": gin.H{
			"code":    "capability_missing",
			"message": err.Error(),
			"hint":    "the database schema does not support this filter and ordering combination; run migrations",
		}})
	case errors.Is(err, sequencedomain.ErrCounterConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "counter_conflict",
			"message": err.Error(),
		}})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "internal",
			"message": "internal error",
		}})
	}
}
