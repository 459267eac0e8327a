package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	"github.com/cogentahq/timebill/internal/clock"
	"github.com/cogentahq/timebill/internal/config"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/cogentahq/timebill/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type loaderMock struct {
	mock.Mock
}

func (m *loaderMock) Load(ctx context.Context, filter timeentrydomain.Filter) ([]timeentrydomain.DecoratedEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timeentrydomain.DecoratedEntry), args.Error(1)
}

type clientRepoMock struct {
	mock.Mock
}

func (m *clientRepoMock) FindByID(ctx context.Context, id snowflake.ID) (*clientdomain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientdomain.Client), args.Error(1)
}

func (m *clientRepoMock) List(ctx context.Context, page pagination.Pagination) ([]clientdomain.Client, error) {
	return nil, nil
}

func (m *clientRepoMock) Count(ctx context.Context) (int64, error) { return 0, nil }

type numbersMock struct {
	mock.Mock
}

func (m *numbersMock) IssueNumber(ctx context.Context, year int) (string, error) {
	args := m.Called(ctx, year)
	return args.String(0), args.Error(1)
}

func (m *numbersMock) PlaceholderNumber(year int) string { return "TMP-2026-DEADBEEF" }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Company.Name = "Cogenta Consulting"
	cfg.Company.Currency = "EUR"
	cfg.Company.TaxRatePercent = 21
	cfg.Company.PaymentTerms = "Payment due within 14 days."
	cfg.Company.DueDays = 14
	return cfg
}

func newBillingService(loader *loaderMock, clients *clientRepoMock, numbers *numbersMock) billingdomain.Service {
	return NewService(ServiceParam{
		Log:     zap.NewNop(),
		Cfg:     testConfig(),
		Loader:  loader,
		Clients: clients,
		Numbers: numbers,
		Clock:   clock.Fixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
	})
}

func TestGenerateInvoice_EmptySelection(t *testing.T) {
	svc := newBillingService(&loaderMock{}, &clientRepoMock{}, &numbersMock{})

	_, err := svc.GenerateInvoice(context.Background(), billingdomain.GenerateRequest{
		DetailLevel: billingdomain.DetailLevelDetail,
	})
	assert.ErrorIs(t, err, billingdomain.ErrEmptySelection)
}

func TestGenerateInvoice_ClientNotFound(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clients := &clientRepoMock{}
	clients.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

	svc := newBillingService(&loaderMock{}, clients, &numbersMock{})

	_, err = svc.GenerateInvoice(context.Background(), billingdomain.GenerateRequest{
		ClientID:         node.Generate(),
		SelectedEntryIDs: []snowflake.ID{node.Generate()},
		DetailLevel:      billingdomain.DetailLevelDetail,
	})
	assert.ErrorIs(t, err, billingdomain.ErrClientNotFound)
}

func TestGenerateInvoice_NoLineItemsSkipsNumbering(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clientID := node.Generate()
	clients := &clientRepoMock{}
	clients.On("FindByID", mock.Anything, clientID).Return(&clientdomain.Client{ID: clientID, CompanyName: "Acme"}, nil)

	loader := &loaderMock{}
	loader.On("Load", mock.Anything, mock.Anything).Return([]timeentrydomain.DecoratedEntry{}, nil)

	numbers := &numbersMock{}

	svc := newBillingService(loader, clients, numbers)

	_, err = svc.GenerateInvoice(context.Background(), billingdomain.GenerateRequest{
		ClientID:         clientID,
		SelectedEntryIDs: []snowflake.ID{node.Generate()},
		DetailLevel:      billingdomain.DetailLevelDetail,
	})
	assert.ErrorIs(t, err, billingdomain.ErrNoLineItems)

	// The counter must stay untouched for an empty aggregation.
	numbers.AssertNotCalled(t, "IssueNumber", mock.Anything, mock.Anything)
}

func TestGenerateInvoice_Success(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clientID := node.Generate()
	clients := &clientRepoMock{}
	clients.On("FindByID", mock.Anything, clientID).Return(&clientdomain.Client{ID: clientID, CompanyName: "Acme Corporation"}, nil)

	entry := decoratedEntry(node.Generate(), time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 5400, "100.00", "Development", "Backend", "Engineering")

	loader := &loaderMock{}
	loader.On("Load", mock.Anything, mock.MatchedBy(func(f timeentrydomain.Filter) bool {
		return f.ClientID != nil && *f.ClientID == clientID && f.Order == timeentrydomain.SortAscending
	})).Return([]timeentrydomain.DecoratedEntry{entry}, nil)

	numbers := &numbersMock{}
	numbers.On("IssueNumber", mock.Anything, 2026).Return("INV-2026-00042", nil)

	svc := newBillingService(loader, clients, numbers)

	invoice, err := svc.GenerateInvoice(context.Background(), billingdomain.GenerateRequest{
		ClientID:         clientID,
		SelectedEntryIDs: []snowflake.ID{entry.ID},
		DetailLevel:      billingdomain.DetailLevelDetail,
		SummarizeByRate:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00042", invoice.Number)
	assert.Equal(t, "Acme Corporation", invoice.Client.CompanyName)
	require.Len(t, invoice.LineItems, 1)
	assert.True(t, invoice.Subtotal.Equal(decimal.RequireFromString("150")))
	assert.True(t, invoice.Tax.Equal(decimal.RequireFromString("31.5")))
	assert.True(t, invoice.Total.Equal(decimal.RequireFromString("181.5")))
	assert.Equal(t, time.Date(2026, 3, 24, 12, 0, 0, 0, time.UTC), invoice.DueAt)
	numbers.AssertExpectations(t)
}
