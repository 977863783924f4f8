package tenancy

import "github.com/fla7a/backend/internal/domain/shared"

// Guard failures, checked in this order.
var (
	ErrMissingTenant   = shared.NewDomainError("TENANT_MISSING", "No tenant could be resolved for this request")
	ErrUnauthenticated = shared.NewDomainError("UNAUTHENTICATED", "Authentication is required")
	ErrTenantMismatch  = shared.NewDomainError("TENANT_MISMATCH", "User does not belong to the requested tenant")
)

// Authorize decides whether rc may proceed. It returns nil to allow, or one
// of ErrMissingTenant, ErrUnauthenticated, ErrTenantMismatch. A role that
// bypasses tenant isolation is allowed whatever tenant was resolved, but a
// tenant must still be resolved.
func Authorize(rc RequestContext) error {
	if !rc.HasTenant() {
		return ErrMissingTenant
	}
	if rc.User == nil {
		return ErrUnauthenticated
	}
	if rc.User.Role.BypassesTenantIsolation() {
		return nil
	}
	if rc.User.TenantID != rc.TenantID {
		return ErrTenantMismatch
	}
	return nil
}
