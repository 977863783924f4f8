package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/fla7a/backend/internal/domain/invoicing"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) CreateNumbered(ctx context.Context, inv *invoicing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func newIssuedCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "invoices_issued_total"}, []string{"tva_rate"})
}

func sampleLines() []LineInput {
	return []LineInput{
		{Description: "Engrais NPK", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("45.50")},
		{Description: "Irrigation", Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.NewFromInt(120)},
	}
}

func TestInvoiceService_Quote(t *testing.T) {
	svc := NewInvoiceService(new(MockInvoiceRepository), nil)

	t.Run("prices lines", func(t *testing.T) {
		q, err := svc.Quote(context.Background(), QuoteInput{TVARate: "TVA_20", Lines: sampleLines()})
		require.NoError(t, err)
		assert.Equal(t, []string{"455.00", "300.00"}, q.LineAmounts)
		assert.Equal(t, "755.00 MAD", q.Subtotal.String())
		assert.Equal(t, "151.00 MAD", q.TVA.String())
		assert.Equal(t, "906.00 MAD", q.TTC.String())
	})

	t.Run("reduced rate", func(t *testing.T) {
		q, err := svc.Quote(context.Background(), QuoteInput{TVARate: "TVA_7", Lines: sampleLines()})
		require.NoError(t, err)
		assert.Equal(t, "52.85 MAD", q.TVA.String())
		assert.Equal(t, "807.85 MAD", q.TTC.String())
	})

	t.Run("unknown rate", func(t *testing.T) {
		_, err := svc.Quote(context.Background(), QuoteInput{TVARate: "TVA_19", Lines: sampleLines()})
		assert.ErrorIs(t, err, ErrInvalidTVARate)
	})

	t.Run("no lines", func(t *testing.T) {
		_, err := svc.Quote(context.Background(), QuoteInput{TVARate: "TVA_0"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LINES", domainErr.Code)
	})
}

func TestInvoiceService_Create(t *testing.T) {
	issued := time.Date(2025, time.March, 14, 8, 30, 0, 0, time.UTC)

	t.Run("numbers, stores and counts", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("CreateNumbered", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*invoicing.Invoice).AssignNumber(7)
			}).
			Return(nil)
		counter := newIssuedCounter()
		svc := NewInvoiceService(repo, counter)

		dto, err := svc.Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Coopérative Atlas",
			CustomerICE:  "001525374000087",
			TVARate:      "TVA_20",
			IssuedAt:     &issued,
			Lines:        sampleLines(),
		})
		require.NoError(t, err)
		assert.Equal(t, "FLA-2025-00007", dto.Number)
		assert.Equal(t, "2024/2025", dto.Campaign)
		assert.Equal(t, "906.00 MAD", dto.TTC.String())
		require.Len(t, dto.Lines, 2)
		assert.Equal(t, "455.00", dto.Lines[0].Amount)
		assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("TVA_20")))
		repo.AssertExpectations(t)
	})

	t.Run("defaults issue date to now", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("CreateNumbered", mock.Anything, mock.Anything).Return(nil)
		svc := NewInvoiceService(repo, nil)
		svc.now = func() time.Time { return issued }

		dto, err := svc.Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Client",
			TVARate:      "TVA_0",
			Lines:        sampleLines(),
		})
		require.NoError(t, err)
		assert.Equal(t, issued, dto.IssuedAt)
		assert.Equal(t, "0.00 MAD", dto.TVA.String())
	})

	t.Run("issue date in service location", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("CreateNumbered", mock.Anything, mock.Anything).Return(nil)
		casablanca := time.FixedZone("+01", 3600)

		dto, err := NewInvoiceService(repo, nil).InLocation(casablanca).Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Client",
			TVARate:      "TVA_7",
			Lines:        sampleLines(),
		})
		require.NoError(t, err)
		assert.Equal(t, casablanca, dto.IssuedAt.Location())
	})

	t.Run("client issue date is numbered in service location", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("CreateNumbered", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
			return inv.SequenceYear() == 2026
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*invoicing.Invoice).AssignNumber(1)
		}).Return(nil)
		casablanca := time.FixedZone("+01", 3600)
		lateNewYearsEve := time.Date(2025, time.December, 31, 23, 30, 0, 0, time.UTC)

		dto, err := NewInvoiceService(repo, nil).InLocation(casablanca).Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Client",
			TVARate:      "TVA_20",
			IssuedAt:     &lateNewYearsEve,
			Lines:        sampleLines(),
		})
		require.NoError(t, err)
		assert.Equal(t, "FLA-2026-00001", dto.Number)
		assert.True(t, dto.IssuedAt.Equal(lateNewYearsEve))
		assert.Equal(t, 1, dto.IssuedAt.Day())
		repo.AssertExpectations(t)
	})

	t.Run("storage failure is not counted", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("CreateNumbered", mock.Anything, mock.Anything).Return(assert.AnError)
		counter := newIssuedCounter()

		_, err := NewInvoiceService(repo, counter).Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Client",
			TVARate:      "TVA_10",
			Lines:        sampleLines(),
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0.0, testutil.ToFloat64(counter.WithLabelValues("TVA_10")))
	})

	t.Run("invalid customer ICE", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		_, err := NewInvoiceService(repo, nil).Create(context.Background(), "atlas", CreateInvoiceInput{
			CustomerName: "Client",
			CustomerICE:  "ABC",
			TVARate:      "TVA_10",
			Lines:        sampleLines(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ICE", domainErr.Code)
		repo.AssertNotCalled(t, "CreateNumbered", mock.Anything, mock.Anything)
	})
}
