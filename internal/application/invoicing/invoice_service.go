// Package invoicing implements quoting and issuing of tenant invoices.
package invoicing

import (
	"context"
	"time"

	"github.com/fla7a/backend/internal/domain/invoicing"
	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/domain/shared/valueobject"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidTVARate is returned for rate keys outside the TVA_* set
var ErrInvalidTVARate = shared.NewDomainError("INVALID_TVA_RATE", "Unknown TVA rate")

// InvoiceService prices and issues invoices
type InvoiceService struct {
	repo   invoicing.InvoiceRepository
	issued *prometheus.CounterVec
	now    func() time.Time
	loc    *time.Location
}

// NewInvoiceService creates a new invoice service. issued counts stored
// invoices by TVA rate and may be nil.
func NewInvoiceService(repo invoicing.InvoiceRepository, issued *prometheus.CounterVec) *InvoiceService {
	return &InvoiceService{
		repo:   repo,
		issued: issued,
		now:    time.Now,
	}
}

// InLocation reads every issue date in loc, whether defaulted or supplied by
// the client, so the numbering year and campaign follow the local calendar
func (s *InvoiceService) InLocation(loc *time.Location) *InvoiceService {
	s.loc = loc
	s.now = func() time.Time { return time.Now().In(loc) }
	return s
}

// LineInput is one requested invoice line
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// QuoteInput contains the lines and rate to price
type QuoteInput struct {
	TVARate string
	Lines   []LineInput
}

// CreateInvoiceInput contains the invoice to issue
type CreateInvoiceInput struct {
	CustomerName string
	CustomerICE  string
	TVARate      string
	IssuedAt     *time.Time
	Lines        []LineInput
}

// QuoteDTO is the priced result of a quote
type QuoteDTO struct {
	TVARate     string            `json:"tva_rate"`
	LineAmounts []string          `json:"line_amounts"`
	Subtotal    valueobject.Money `json:"subtotal"`
	TVA         valueobject.Money `json:"tva"`
	TTC         valueobject.Money `json:"ttc"`
}

// InvoiceLineDTO is one line of an issued invoice
type InvoiceLineDTO struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// InvoiceDTO represents an issued invoice
type InvoiceDTO struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	CustomerName string            `json:"customer_name"`
	CustomerICE  string            `json:"customer_ice,omitempty"`
	IssuedAt     time.Time         `json:"issued_at"`
	Campaign     string            `json:"campaign"`
	TVARate      string            `json:"tva_rate"`
	Subtotal     valueobject.Money `json:"subtotal"`
	TVA          valueobject.Money `json:"tva"`
	TTC          valueobject.Money `json:"ttc"`
	Lines        []InvoiceLineDTO  `json:"lines"`
}

// ToInvoiceDTO converts a domain invoice to its DTO
func ToInvoiceDTO(inv *invoicing.Invoice) InvoiceDTO {
	lines := make([]InvoiceLineDTO, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineDTO{
			Position:    l.Position,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.String(),
			Amount:      l.Amount.StringFixed(valueobject.MinorUnits),
		}
	}
	return InvoiceDTO{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerName: inv.CustomerName,
		CustomerICE:  inv.CustomerICE,
		IssuedAt:     inv.IssuedAt,
		Campaign:     inv.Campaign,
		TVARate:      string(inv.TVARate),
		Subtotal:     valueobject.NewMoneyMAD(inv.Subtotal),
		TVA:          valueobject.NewMoneyMAD(inv.TVA),
		TTC:          valueobject.NewMoneyMAD(inv.TTC),
		Lines:        lines,
	}
}

func parseRate(key string) (morocco.TVARate, error) {
	rate, ok := morocco.ParseTVARate(key)
	if !ok {
		return "", ErrInvalidTVARate
	}
	return rate, nil
}

func toDomainLines(in []LineInput) []invoicing.LineInput {
	lines := make([]invoicing.LineInput, len(in))
	for i, l := range in {
		lines[i] = invoicing.LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return lines
}

// Quote prices lines without storing anything
func (s *InvoiceService) Quote(ctx context.Context, input QuoteInput) (*QuoteDTO, error) {
	_, span := telemetry.StartServiceSpan(ctx, "invoice", "quote", "invoice.lines", len(input.Lines))
	defer span.End()

	rate, err := parseRate(input.TVARate)
	if err != nil {
		return nil, err
	}
	totals, amounts, err := invoicing.Quote(toDomainLines(input.Lines), rate)
	if err != nil {
		return nil, err
	}

	lineAmounts := make([]string, len(amounts))
	for i, a := range amounts {
		lineAmounts[i] = a.StringFixed(valueobject.MinorUnits)
	}
	return &QuoteDTO{
		TVARate:     string(rate),
		LineAmounts: lineAmounts,
		Subtotal:    totals.Subtotal,
		TVA:         totals.TVA,
		TTC:         totals.TTC,
	}, nil
}

// Create issues an invoice for tenantID with the next number of its year
func (s *InvoiceService) Create(ctx context.Context, tenantID string, input CreateInvoiceInput) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	rate, err := parseRate(input.TVARate)
	if err != nil {
		return nil, err
	}
	issuedAt := s.now()
	if input.IssuedAt != nil {
		issuedAt = *input.IssuedAt
		if s.loc != nil {
			issuedAt = issuedAt.In(s.loc)
		}
	}

	inv, err := invoicing.NewInvoice(tenantID, invoicing.NewInvoiceInput{
		CustomerName: input.CustomerName,
		CustomerICE:  input.CustomerICE,
		TVARate:      rate,
		IssuedAt:     issuedAt,
		Lines:        toDomainLines(input.Lines),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateNumbered(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to issue invoice", zap.Error(err))
		return nil, err
	}

	if s.issued != nil {
		s.issued.WithLabelValues(string(rate)).Inc()
	}
	telemetry.SetAttributes(span, telemetry.AttrInvoiceNumber, inv.Number)
	logger.L(ctx).Info("Invoice issued",
		zap.String("invoice_number", inv.Number),
		zap.String("ttc", inv.TTC.StringFixed(valueobject.MinorUnits)))

	dto := ToInvoiceDTO(inv)
	return &dto, nil
}

// Get returns one invoice of tenantID
func (s *InvoiceService) Get(ctx context.Context, tenantID string, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToInvoiceDTO(inv)
	return &dto, nil
}
