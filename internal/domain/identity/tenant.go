package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// tenantCodePattern is a lower-case DNS label: the code doubles as the
// tenant's subdomain.
var tenantCodePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Tenant is a farm operator organization. Code is the tenant identifier
// used in requests (header or subdomain) and on every tenant-scoped row.
type Tenant struct {
	shared.BaseEntity
	Code   string       `gorm:"type:varchar(63);not null;uniqueIndex"`
	Name   string       `gorm:"type:varchar(200);not null"`
	ICE    string       `gorm:"column:ice;type:char(15)"`
	Phone  string       `gorm:"type:varchar(20)"`
	Status TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// IsValidTenantCode reports whether code can be used as a tenant code
func IsValidTenantCode(code string) bool {
	return tenantCodePattern.MatchString(code)
}

// NewTenant creates a new active tenant. The code is lower-cased before
// validation; ice is optional but must be a valid ICE when given, and phone
// is rewritten to international form and must then be a Moroccan number.
func NewTenant(code, name, ice, phone string) (*Tenant, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !IsValidTenantCode(code) {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "Tenant code must be a lower-case DNS label")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 200 characters")
	}
	if ice != "" && !morocco.ValidateICE(ice) {
		return nil, shared.NewDomainError("INVALID_ICE", "ICE must be exactly 15 digits")
	}
	if phone != "" {
		phone = morocco.FormatPhone(phone)
		if !morocco.ValidateMoroccanPhone(phone) {
			return nil, shared.NewDomainError("INVALID_PHONE", "Phone must be a Moroccan mobile or landline number")
		}
	}

	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		ICE:        ice,
		Phone:      phone,
		Status:     TenantStatusActive,
	}, nil
}

// IsActive returns true if the tenant can be used
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Suspend blocks the tenant
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	return nil
}

// Activate reactivates a suspended tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	return nil
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByCode finds a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// ExistsByCode checks if a tenant with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create inserts a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// Save updates an existing tenant
	Save(ctx context.Context, tenant *Tenant) error
}
