// Package invoicing holds tenant invoices, their TVA totals and their yearly
// numbering.
package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is an issued customer invoice in MAD
type Invoice struct {
	shared.TenantEntity
	Number       string          `gorm:"type:varchar(32);not null"`
	CustomerName string          `gorm:"type:varchar(200);not null"`
	CustomerICE  string          `gorm:"column:customer_ice;type:char(15)"`
	IssuedAt     time.Time       `gorm:"not null"`
	Campaign     string          `gorm:"type:varchar(9);not null"`
	TVARate      morocco.TVARate `gorm:"column:tva_rate;type:varchar(10);not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TVA          decimal.Decimal `gorm:"column:tva;type:decimal(18,2);not null"`
	TTC          decimal.Decimal `gorm:"column:ttc;type:decimal(18,2);not null"`
	Lines        []InvoiceLine   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is one billed item
type InvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// LineInput is a requested line before pricing
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Totals is the priced result of a set of lines
type Totals struct {
	Subtotal valueobject.Money
	TVA      valueobject.Money
	TTC      valueobject.Money
}

// Quote prices lines at rate without creating anything. Line amounts and
// totals are rounded to centimes; the tax is computed on the rounded subtotal.
func Quote(lines []LineInput, rate morocco.TVARate) (Totals, []decimal.Decimal, error) {
	if !rate.IsValid() {
		return Totals{}, nil, shared.NewDomainError("INVALID_TVA_RATE", "Unknown TVA rate: "+string(rate))
	}
	if len(lines) == 0 {
		return Totals{}, nil, shared.NewDomainError("INVALID_LINES", "Invoice needs at least one line")
	}

	amounts := make([]decimal.Decimal, len(lines))
	subtotal := decimal.Zero
	for i, l := range lines {
		if strings.TrimSpace(l.Description) == "" {
			return Totals{}, nil, shared.NewDomainError("INVALID_LINES", "Line description is required")
		}
		if !l.Quantity.IsPositive() {
			return Totals{}, nil, shared.NewDomainError("INVALID_LINES", "Line quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return Totals{}, nil, shared.NewDomainError("INVALID_LINES", "Line unit price cannot be negative")
		}
		amounts[i] = l.Quantity.Mul(l.UnitPrice).Round(valueobject.MinorUnits)
		subtotal = subtotal.Add(amounts[i])
	}

	tva := morocco.TVAAmount(subtotal, string(rate)).Round(valueobject.MinorUnits)
	return Totals{
		Subtotal: valueobject.NewMoneyMAD(subtotal),
		TVA:      valueobject.NewMoneyMAD(tva),
		TTC:      valueobject.NewMoneyMAD(subtotal.Add(tva)),
	}, amounts, nil
}

// NewInvoiceInput carries the fields of an invoice to issue
type NewInvoiceInput struct {
	CustomerName string
	CustomerICE  string
	TVARate      morocco.TVARate
	IssuedAt     time.Time
	Lines        []LineInput
}

// NewInvoice prices and builds an unnumbered invoice for tenantID.
// Call AssignNumber once the sequence value is known.
func NewInvoice(tenantID string, in NewInvoiceInput) (*Invoice, error) {
	if tenantID == "" {
		return nil, shared.NewDomainError("INVALID_TENANT", "Invoice must belong to a tenant")
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}
	ice := strings.TrimSpace(in.CustomerICE)
	if ice != "" && !morocco.ValidateICE(ice) {
		return nil, shared.NewDomainError("INVALID_ICE", "ICE must contain exactly 15 digits")
	}

	totals, amounts, err := Quote(in.Lines, in.TVARate)
	if err != nil {
		return nil, err
	}

	issued := in.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}

	inv := &Invoice{
		TenantEntity: shared.NewTenantEntity(tenantID),
		CustomerName: name,
		CustomerICE:  ice,
		IssuedAt:     issued,
		Campaign:     morocco.GetCampaignYear(issued),
		TVARate:      in.TVARate,
		Subtotal:     totals.Subtotal.Amount(),
		TVA:          totals.TVA.Amount(),
		TTC:          totals.TTC.Amount(),
		Lines:        make([]InvoiceLine, len(in.Lines)),
	}
	for i, l := range in.Lines {
		inv.Lines[i] = InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      amounts[i],
		}
	}
	return inv, nil
}

// SequenceYear is the year whose counter numbers this invoice
func (i *Invoice) SequenceYear() int {
	return i.IssuedAt.Year()
}

// AssignNumber sets the invoice number from the allocated sequence value
func (i *Invoice) AssignNumber(seq int) {
	i.Number = morocco.GenerateInvoiceNumber(seq, i.SequenceYear())
}

// InvoiceSequence is the last number handed out for a tenant and year
type InvoiceSequence struct {
	TenantID  string `gorm:"type:varchar(63);primaryKey"`
	Year      int    `gorm:"primaryKey;autoIncrement:false"`
	LastValue int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	// CreateNumbered allocates the next number for the invoice's tenant and
	// year, assigns it and inserts the invoice in one transaction.
	CreateNumbered(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error)
}
