package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	"github.com/gin-gonic/gin"
)

type generateInvoiceRequest struct {
	ClientID         string   `json:"client_id"`
	SelectedEntryIDs []string `json:"selected_entry_ids"`
	DetailLevel      string   `json:"detail_level"`
	SummarizeByRate  bool     `json:"summarize_by_rate"`
	TaxRatePercent   *float64 `json:"tax_rate_percent"`
}

func (s *Server) bindGenerateRequest(c *gin.Context) (billingdomain.GenerateRequest, bool) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return billingdomain.GenerateRequest{}, false
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return billingdomain.GenerateRequest{}, false
	}

	selected := make([]snowflake.ID, 0, len(req.SelectedEntryIDs))
	for _, raw := range req.SelectedEntryIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, newValidationError("selected_entry_ids", "invalid_entry_id", "invalid entry id"))
			return billingdomain.GenerateRequest{}, false
		}
		selected = append(selected, id)
	}

	level := billingdomain.DetailLevel(strings.ToLower(strings.TrimSpace(req.DetailLevel)))
	if level == "" {
		level = billingdomain.DetailLevelDetail
	}
	if !level.Valid() {
		AbortWithError(c, newValidationError("detail_level", "invalid_detail_level", "invalid detail level"))
		return billingdomain.GenerateRequest{}, false
	}

	return billingdomain.GenerateRequest{
		ClientID:         clientID,
		SelectedEntryIDs: selected,
		DetailLevel:      level,
		SummarizeByRate:  req.SummarizeByRate,
		TaxRatePercent:   req.TaxRatePercent,
	}, true
}

// GenerateInvoice handles POST /api/v1/invoices/generate
func (s *Server) GenerateInvoice(c *gin.Context) {
	req, ok := s.bindGenerateRequest(c)
	if !ok {
		return
	}

	invoice, err := s.billingSvc.GenerateInvoice(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, sequencedomain.ErrCounterConflict) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": gin.H{
				"code":               "counter_conflict",
				"message":            err.Error(),
				"placeholder_number": s.sequenceSvc.PlaceholderNumber(s.clk.Now(c.Request.Context()).Year()),
			}})
			return
		}
		AbortWithError(c, err)
		return
	}

	invoicesGeneratedTotal.Inc()
	respondData(c, invoice)
}

// GenerateInvoicePDF handles POST /api/v1/invoices/generate/pdf
func (s *Server) GenerateInvoicePDF(c *gin.Context) {
	req, ok := s.bindGenerateRequest(c)
	if !ok {
		return
	}

	invoice, err := s.billingSvc.GenerateInvoice(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, sequencedomain.ErrCounterConflict) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": gin.H{
				"code":               "counter_conflict",
				"message":            err.Error(),
				"placeholder_number": s.sequenceSvc.PlaceholderNumber(s.clk.Now(c.Request.Context()).Year()),
			}})
			return
		}
		AbortWithError(c, err)
		return
	}

	invoicesGeneratedTotal.Inc()

	data, filename, err := s.billingSvc.RenderPDF(invoice)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}
