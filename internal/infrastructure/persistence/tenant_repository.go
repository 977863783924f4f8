package persistence

import (
	"context"
	"strings"

	"github.com/fla7a/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTenantRepository implements identity.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByCode finds a tenant by its code, ignoring case
func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToLower(code)).
		First(&tenant).Error; err != nil {
		return nil, translateError(err)
	}
	return &tenant, nil
}

// ExistsByCode checks if a tenant with the given code exists
func (r *GormTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Tenant{}).
		Where("code = ?", strings.ToLower(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new tenant
func (r *GormTenantRepository) Create(ctx context.Context, tenant *identity.Tenant) error {
	return translateError(r.db.WithContext(ctx).Create(tenant).Error)
}

// Save updates an existing tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return translateError(r.db.WithContext(ctx).Save(tenant).Error)
}

var _ identity.TenantRepository = (*GormTenantRepository)(nil)
