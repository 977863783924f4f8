package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservedLabels tells which subdomain labels can never name a tenant.
// *tenancy.Resolver implements it.
type ReservedLabels interface {
	IsReserved(label string) bool
}

// ErrReservedTenantCode is returned for codes that collide with reserved subdomains
var ErrReservedTenantCode = shared.NewDomainError("RESERVED_TENANT_CODE", "Tenant code is a reserved subdomain")

// TenantService handles tenant management operations
type TenantService struct {
	tenantRepo identity.TenantRepository
	reserved   ReservedLabels
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	reserved ReservedLabels,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		reserved:   reserved,
		logger:     logger,
	}
}

// CreateTenantInput contains input for creating a tenant
type CreateTenantInput struct {
	Code  string
	Name  string
	ICE   string
	Phone string
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	ICE       string    `json:"ice,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTenantDTO converts a domain tenant to its DTO
func ToTenantDTO(t *identity.Tenant) TenantDTO {
	return TenantDTO{
		ID:        t.ID,
		Code:      t.Code,
		Name:      t.Name,
		ICE:       t.ICE,
		Phone:     t.Phone,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Create registers a new tenant. Codes that are reserved subdomains or
// already taken are rejected.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "create", "tenant.code", input.Code)
	defer span.End()

	code := strings.ToLower(strings.TrimSpace(input.Code))
	if s.reserved != nil && s.reserved.IsReserved(code) {
		return nil, ErrReservedTenantCode
	}

	tenant, err := identity.NewTenant(code, input.Name, input.ICE, input.Phone)
	if err != nil {
		return nil, err
	}

	exists, err := s.tenantRepo.ExistsByCode(ctx, tenant.Code)
	if err != nil {
		s.logger.Error("Failed to check tenant code existence", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Tenant code already exists")
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Tenant code already exists")
		}
		s.logger.Error("Failed to create tenant", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_code", tenant.Code),
		zap.String("tenant_id", tenant.ID.String()))

	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// GetByCode returns the tenant registered under code
func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// Suspend blocks the tenant registered under code. Tenant-scoped requests
// for a suspended tenant are refused until it is activated again.
func (s *TenantService) Suspend(ctx context.Context, code string) (*TenantDTO, error) {
	return s.changeStatus(ctx, code, "suspend", (*identity.Tenant).Suspend)
}

// Activate lifts a suspension
func (s *TenantService) Activate(ctx context.Context, code string) (*TenantDTO, error) {
	return s.changeStatus(ctx, code, "activate", (*identity.Tenant).Activate)
}

func (s *TenantService) changeStatus(ctx context.Context, code, op string, apply func(*identity.Tenant) error) (*TenantDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", op, "tenant.code", code)
	defer span.End()

	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := apply(tenant); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to save tenant status", zap.String("tenant_code", tenant.Code), zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Tenant status changed",
		zap.String("tenant_code", tenant.Code),
		zap.String("status", string(tenant.Status)))

	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// IsSuspended reports whether code names a suspended tenant. Codes with no
// registered tenant are not suspended.
func (s *TenantService) IsSuspended(ctx context.Context, code string) (bool, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !tenant.IsActive(), nil
}
