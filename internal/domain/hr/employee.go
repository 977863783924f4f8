package hr

import (
	"context"
	"strings"
	"time"

	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.French)

// Employee is a farm worker or staff member of one tenant
type Employee struct {
	shared.TenantEntity
	FirstName string     `gorm:"type:varchar(100);not null"`
	LastName  string     `gorm:"type:varchar(100);not null"`
	CIN       string     `gorm:"column:cin;type:varchar(8);not null"`
	Phone     string     `gorm:"type:varchar(20)"`
	RIB       string     `gorm:"column:rib;type:char(24)"`
	Position  string     `gorm:"type:varchar(100)"`
	HiredAt   *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// NewEmployeeInput carries the raw fields of a new employee
type NewEmployeeInput struct {
	FirstName string
	LastName  string
	CIN       string
	Phone     string
	RIB       string
	Position  string
	HiredAt   *time.Time
}

// NewEmployee validates and normalizes input for tenantID. CIN is upper-cased,
// phone is rewritten to +212 form, RIB loses its spacing and names are
// title-cased.
func NewEmployee(tenantID string, in NewEmployeeInput) (*Employee, error) {
	if tenantID == "" {
		return nil, shared.NewDomainError("INVALID_TENANT", "Employee must belong to a tenant")
	}

	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}

	cin := strings.TrimSpace(in.CIN)
	if !morocco.ValidateCIN(cin) {
		return nil, shared.NewDomainError("INVALID_CIN", "CIN must be 1-2 letters followed by 5-6 digits")
	}
	cin = morocco.NormalizeCIN(cin)

	var phone string
	if strings.TrimSpace(in.Phone) != "" {
		phone = morocco.FormatPhone(in.Phone)
		if !morocco.ValidateMoroccanPhone(phone) {
			return nil, shared.NewDomainError("INVALID_PHONE", "Phone must be a Moroccan number")
		}
	}

	var rib string
	if strings.TrimSpace(in.RIB) != "" {
		rib = morocco.NormalizeRIB(in.RIB)
		if !morocco.ValidateRIB(rib) {
			return nil, shared.NewDomainError("INVALID_RIB", "RIB must contain exactly 24 digits")
		}
	}

	return &Employee{
		TenantEntity: shared.NewTenantEntity(tenantID),
		FirstName:    nameCaser.String(first),
		LastName:     nameCaser.String(last),
		CIN:          cin,
		Phone:        phone,
		RIB:          rib,
		Position:     strings.TrimSpace(in.Position),
		HiredAt:      in.HiredAt,
	}, nil
}

// FullName returns "First Last"
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// EmployeeRepository persists employees. Every method is scoped to one
// tenant.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*Employee, error)
	List(ctx context.Context, tenantID string, filter shared.Filter) ([]Employee, int64, error)
	ExistsByCIN(ctx context.Context, tenantID, cin string) (bool, error)
}
