package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	"github.com/cogentahq/timebill/internal/clock"
	"github.com/cogentahq/timebill/internal/config"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type billingStub struct {
	err error
}

func (b *billingStub) GenerateInvoice(ctx context.Context, req billingdomain.GenerateRequest) (*billingdomain.Invoice, error) {
	return nil, b.err
}

func (b *billingStub) RenderPDF(invoice *billingdomain.Invoice) ([]byte, string, error) {
	return nil, "", billingdomain.ErrNoLineItems
}

type numbersStub struct {
	placeholderYear int
}

func (n *numbersStub) IssueNumber(ctx context.Context, year int) (string, error) {
	return "", sequencedomain.ErrCounterConflict
}

func (n *numbersStub) PlaceholderNumber(year int) string {
	n.placeholderYear = year
	return "TMP-2031-0BADF00D"
}

func newInvoiceTestServer(numbers *numbersStub, clk clock.Clock) *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(ServerParam{
		Log:         zap.NewNop(),
		Cfg:         &config.Config{},
		Clock:       clk,
		Engine:      gin.New(),
		BillingSvc:  &billingStub{err: sequencedomain.ErrCounterConflict},
		SequenceSvc: numbers,
	})
}

func TestGenerateInvoice_CounterConflictPlaceholderYear(t *testing.T) {
	numbers := &numbersStub{}
	s := newInvoiceTestServer(numbers, clock.Fixed(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)))

	body, err := json.Marshal(map[string]any{
		"client_id":          "7242183262179823617",
		"selected_entry_ids": []string{"7242183262179823618"},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/invoices/generate", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	s.GenerateInvoice(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 2031, numbers.placeholderYear)
	assert.Contains(t, w.Body.String(), "TMP-2031-0BADF00D")
}
