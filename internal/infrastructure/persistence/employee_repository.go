package persistence

import (
	"context"
	"strings"

	"github.com/fla7a/backend/internal/domain/hr"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements hr.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// Create inserts a new employee
func (r *GormEmployeeRepository) Create(ctx context.Context, e *hr.Employee) error {
	return translateError(r.db.WithContext(ctx).Create(e).Error)
}

// FindByID finds an employee of tenantID
func (r *GormEmployeeRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*hr.Employee, error) {
	var e hr.Employee
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&e).Error; err != nil {
		return nil, translateError(err)
	}
	return &e, nil
}

// List returns one page of tenantID's employees and the total match count
func (r *GormEmployeeRepository) List(ctx context.Context, tenantID string, filter shared.Filter) ([]hr.Employee, int64, error) {
	query := r.db.WithContext(ctx).Model(&hr.Employee{}).Scopes(tenant.Scope(tenantID))
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(cin) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []hr.Employee
	if err := query.
		Order(employeeSortColumns.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&employees).Error; err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ExistsByCIN reports whether tenantID already employs someone with cin
func (r *GormEmployeeRepository) ExistsByCIN(ctx context.Context, tenantID, cin string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&hr.Employee{}).
		Scopes(tenant.Scope(tenantID)).
		Where("cin = ?", cin).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ hr.EmployeeRepository = (*GormEmployeeRepository)(nil)
