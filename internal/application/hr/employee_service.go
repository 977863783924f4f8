// Package hr implements the employee use cases of a tenant.
package hr

import (
	"context"
	"errors"
	"time"

	"github.com/fla7a/backend/internal/domain/hr"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateCIN is returned when the tenant already employs the CIN holder
var ErrDuplicateCIN = shared.NewDomainError(shared.ErrAlreadyExists.Code, "An employee with this CIN already exists")

// EmployeeService handles employee operations
type EmployeeService struct {
	repo hr.EmployeeRepository
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(repo hr.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// CreateEmployeeInput contains input for hiring an employee
type CreateEmployeeInput struct {
	FirstName string
	LastName  string
	CIN       string
	Phone     string
	RIB       string
	Position  string
	HiredAt   *time.Time
}

// EmployeeFilter is the list query of employees
type EmployeeFilter struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Search   string
}

// ToSharedFilter clamps paging and converts to shared.Filter
func (f EmployeeFilter) ToSharedFilter() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.SortBy,
		OrderDir: f.SortDir,
		Search:   f.Search,
	}.Normalized()
}

// EmployeeDTO represents an employee in responses
type EmployeeDTO struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	CIN       string     `json:"cin"`
	Phone     string     `json:"phone,omitempty"`
	RIB       string     `json:"rib,omitempty"`
	Position  string     `json:"position,omitempty"`
	HiredAt   *time.Time `json:"hired_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToEmployeeDTO converts a domain employee to its DTO
func ToEmployeeDTO(e *hr.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		FullName:  e.FullName(),
		CIN:       e.CIN,
		Phone:     e.Phone,
		RIB:       e.RIB,
		Position:  e.Position,
		HiredAt:   e.HiredAt,
		CreatedAt: e.CreatedAt,
	}
}

// Create hires an employee for tenantID
func (s *EmployeeService) Create(ctx context.Context, tenantID string, input CreateEmployeeInput) (*EmployeeDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "employee", "create")
	defer span.End()

	e, err := hr.NewEmployee(tenantID, hr.NewEmployeeInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CIN:       input.CIN,
		Phone:     input.Phone,
		RIB:       input.RIB,
		Position:  input.Position,
		HiredAt:   input.HiredAt,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCIN(ctx, tenantID, e.CIN)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCIN
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrDuplicateCIN
		}
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to create employee", zap.Error(err))
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrEmployeeID, e.ID.String())
	logger.L(ctx).Info("Employee created", zap.String("employee_id", e.ID.String()))

	dto := ToEmployeeDTO(e)
	return &dto, nil
}

// Get returns one employee of tenantID
func (s *EmployeeService) Get(ctx context.Context, tenantID string, id uuid.UUID) (*EmployeeDTO, error) {
	e, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToEmployeeDTO(e)
	return &dto, nil
}

// List returns a page of tenantID's employees
func (s *EmployeeService) List(ctx context.Context, tenantID string, filter EmployeeFilter) (shared.Paginated[EmployeeDTO], error) {
	f := filter.ToSharedFilter()
	employees, total, err := s.repo.List(ctx, tenantID, f)
	if err != nil {
		return shared.Paginated[EmployeeDTO]{}, err
	}

	items := make([]EmployeeDTO, len(employees))
	for i := range employees {
		items[i] = ToEmployeeDTO(&employees[i])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}
