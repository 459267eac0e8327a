// Package domain defines invoice aggregation inputs and derived outputs.
// Line items and totals are computed fresh on every call and never persisted.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	"github.com/shopspring/decimal"
)

// DetailLevel controls line-item description granularity when entries are
// not summarized by rate.
type DetailLevel string

const (
	DetailLevelCategory DetailLevel = "category"
	DetailLevelTask     DetailLevel = "task"
	DetailLevelDetail   DetailLevel = "detail"
)

func (d DetailLevel) Valid() bool {
	switch d {
	case DetailLevelCategory, DetailLevelTask, DetailLevelDetail:
		return true
	}
	return false
}

// RateNotApplicable marks an absent hourly rate on a line item. It is the
// one sentinel used everywhere; a missing rate never renders as "0.00".
const RateNotApplicable = "N/A"

// Policy is the grouping policy for one aggregation call.
type Policy struct {
	DetailLevel     DetailLevel     `json:"detail_level"`
	SummarizeByRate bool            `json:"summarize_by_rate"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	Currency        string          `json:"currency"`
}

func (p Policy) Validate() error {
	if !p.SummarizeByRate && !p.DetailLevel.Valid() {
		return ErrInvalidPolicy
	}
	if p.TaxRatePercent.IsNegative() {
		return ErrInvalidPolicy
	}
	return nil
}

// LineItem is one derived invoice row. Quantity and Rate are already
// presentation strings (2 decimals, or the N/A sentinel); Amount stays an
// exact decimal so totals never accumulate rounding error.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    string          `json:"quantity"`
	Rate        string          `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Aggregation is the computed result of one (entries, selection, policy) run.
type Aggregation struct {
	LineItems []LineItem      `json:"line_items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Invoice is the full generation result handed to the caller. Only the
// counter backing the number is persisted.
type Invoice struct {
	Number     string              `json:"number"`
	Client     clientdomain.Client `json:"client"`
	LineItems  []LineItem          `json:"line_items"`
	Subtotal   decimal.Decimal     `json:"subtotal"`
	Tax        decimal.Decimal     `json:"tax"`
	Total      decimal.Decimal     `json:"total"`
	TaxRate    decimal.Decimal     `json:"tax_rate_percent"`
	Currency   string              `json:"currency"`
	Summarized bool                `json:"summarized_by_rate"`
	IssuedAt   time.Time           `json:"issued_at"`
	DueAt      time.Time           `json:"due_at"`
	Notes      string              `json:"notes,omitempty"`
}

type GenerateRequest struct {
	ClientID         snowflake.ID   `json:"client_id"`
	SelectedEntryIDs []snowflake.ID `json:"selected_entry_ids"`
	DetailLevel      DetailLevel    `json:"detail_level"`
	SummarizeByRate  bool           `json:"summarize_by_rate"`
	// TaxRatePercent overrides the configured company rate when non-nil
	// (21 means 21%).
	TaxRatePercent *float64 `json:"tax_rate_percent,omitempty"`
}

var (
	ErrInvalidPolicy  = errors.New("invalid aggregation policy")
	ErrEmptySelection = errors.New("no time entries selected")
	ErrClientNotFound = errors.New("client not found")
	ErrNoLineItems    = errors.New("selection produced no line items")
)

type Service interface {
	GenerateInvoice(ctx context.Context, req GenerateRequest) (*Invoice, error)
	RenderPDF(invoice *Invoice) ([]byte, string, error)
}
