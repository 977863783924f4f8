package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every stored record has
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh random id
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// TenantEntity is a record owned by exactly one tenant. TenantID holds the
// tenant code as resolved from the request, never a database key.
type TenantEntity struct {
	BaseEntity
	TenantID string `gorm:"type:varchar(63);not null;index"`
}

// NewTenantEntity creates a record owned by tenantID
func NewTenantEntity(tenantID string) TenantEntity {
	return TenantEntity{BaseEntity: NewBaseEntity(), TenantID: tenantID}
}
