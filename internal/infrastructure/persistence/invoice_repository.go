package persistence

import (
	"context"
	"fmt"

	"github.com/fla7a/backend/internal/domain/invoicing"
	"github.com/fla7a/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// CreateNumbered numbers and inserts inv. The sequence row of the invoice's
// tenant and year stays locked until the invoice is committed, so numbers
// are gapless and unique per tenant and year.
func (r *GormInvoiceRepository) CreateNumbered(ctx context.Context, inv *invoicing.Invoice) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSequence(tx, inv.TenantID, inv.SequenceYear())
		if err != nil {
			return err
		}
		inv.AssignNumber(next)
		return tx.Create(inv).Error
	}))
}

func nextSequence(tx *gorm.DB, tenantID string, year int) (int, error) {
	seed := invoicing.InvoiceSequence{TenantID: tenantID, Year: year}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("failed to seed invoice sequence: %w", err)
	}

	var seq invoicing.InvoiceSequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(tenant.Condition(tenantID)).
		Where("year = ?", year).
		Take(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to lock invoice sequence: %w", err)
	}

	next := seq.LastValue + 1
	if err := tx.Model(&invoicing.InvoiceSequence{}).
		Where(tenant.Condition(tenantID)).
		Where("year = ?", year).
		Update("last_value", next).Error; err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	return next, nil
}

// FindByID finds an invoice of tenantID with its lines in order
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&inv).Error; err != nil {
		return nil, translateError(err)
	}
	return &inv, nil
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
