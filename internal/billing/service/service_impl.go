package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	"github.com/cogentahq/timebill/internal/clock"
	"github.com/cogentahq/timebill/internal/config"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	cfg     *config.Config
	loader  timeentrydomain.Loader
	clients clientdomain.Repository
	numbers sequencedomain.Service
	clock   clock.Clock
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Cfg     *config.Config
	Loader  timeentrydomain.Loader
	Clients clientdomain.Repository
	Numbers sequencedomain.Service
	Clock   clock.Clock
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		log:     p.Log.Named("billing.service"),
		cfg:     p.Cfg,
		loader:  p.Loader,
		clients: p.Clients,
		numbers: p.Numbers,
		clock:   p.Clock,
	}
}

// GenerateInvoice loads the client's entries in start-time order, aggregates
// the selected ones under the requested policy, and only then issues the
// invoice number. The counter is never touched for a selection that cannot
// produce line items.
func (s *Service) GenerateInvoice(ctx context.Context, req billingdomain.GenerateRequest) (*billingdomain.Invoice, error) {
	if len(req.SelectedEntryIDs) == 0 {
		return nil, billingdomain.ErrEmptySelection
	}

	policy := s.policyFor(req)
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("fetch client %s: %w", req.ClientID, err)
	}
	if client == nil {
		return nil, billingdomain.ErrClientNotFound
	}

	entries, err := s.loader.Load(ctx, timeentrydomain.Filter{
		ClientID: &req.ClientID,
		Order:    timeentrydomain.SortAscending,
	})
	if err != nil {
		return nil, err
	}

	selected := make(map[snowflake.ID]struct{}, len(req.SelectedEntryIDs))
	for _, id := range req.SelectedEntryIDs {
		selected[id] = struct{}{}
	}

	aggregation, err := Aggregate(entries, selected, policy)
	if err != nil {
		return nil, err
	}
	if len(aggregation.LineItems) == 0 {
		return nil, billingdomain.ErrNoLineItems
	}

	now := s.clock.Now(ctx)
	number, err := s.numbers.IssueNumber(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("number", number),
		zap.String("client_id", req.ClientID.String()),
		zap.Int("line_items", len(aggregation.LineItems)),
		zap.String("total", aggregation.Total.StringFixed(2)),
	)

	return &billingdomain.Invoice{
		Number:     number,
		Client:     *client,
		LineItems:  aggregation.LineItems,
		Subtotal:   aggregation.Subtotal,
		Tax:        aggregation.Tax,
		Total:      aggregation.Total,
		TaxRate:    policy.TaxRatePercent,
		Currency:   policy.Currency,
		Summarized: req.SummarizeByRate,
		IssuedAt:   now,
		DueAt:      now.AddDate(0, 0, s.dueDays()),
		Notes:      s.cfg.Company.PaymentTerms,
	}, nil
}

func (s *Service) policyFor(req billingdomain.GenerateRequest) billingdomain.Policy {
	taxRate := decimal.NewFromFloat(s.cfg.Company.TaxRatePercent)
	if req.TaxRatePercent != nil {
		taxRate = decimal.NewFromFloat(*req.TaxRatePercent)
	}
	return billingdomain.Policy{
		DetailLevel:     req.DetailLevel,
		SummarizeByRate: req.SummarizeByRate,
		TaxRatePercent:  taxRate,
		Currency:        s.cfg.Company.Currency,
	}
}

func (s *Service) dueDays() int {
	if s.cfg.Company.DueDays > 0 {
		return s.cfg.Company.DueDays
	}
	return 14
}
