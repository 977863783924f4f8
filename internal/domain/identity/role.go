package identity

import "strings"

// Role is the closed set of platform roles. The zero value is not a role.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleAccountant Role = "ACCOUNTANT"
	RoleAgronomist Role = "AGRONOMIST"
	RoleOperator   Role = "OPERATOR"
)

// Capability is a coarse permission attached to a role.
type Capability uint8

const (
	// CapBypassTenantIsolation lets a principal act on any tenant.
	CapBypassTenantIsolation Capability = 1 << iota
	// CapManageTenants allows creating and inspecting tenants.
	CapManageTenants
	// CapManageEmployees allows HR writes.
	CapManageEmployees
	// CapIssueInvoices allows creating invoices.
	CapIssueInvoices
)

var roleCapabilities = map[Role]Capability{
	RoleSuperAdmin: CapBypassTenantIsolation | CapManageTenants | CapManageEmployees | CapIssueInvoices,
	RoleAdmin:      CapManageEmployees | CapIssueInvoices,
	RoleManager:    CapManageEmployees | CapIssueInvoices,
	RoleAccountant: CapIssueInvoices,
	RoleAgronomist: 0,
	RoleOperator:   0,
}

// ParseRole returns the role named s (case-insensitive), or false if s is
// not a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; !ok {
		return "", false
	}
	return r, true
}

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleAccountant, RoleAgronomist, RoleOperator}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Has reports whether r grants capability c. Unknown roles grant nothing.
func (r Role) Has(c Capability) bool {
	return roleCapabilities[r]&c != 0
}

// BypassesTenantIsolation reports whether r may act across tenants.
func (r Role) BypassesTenantIsolation() bool {
	return r.Has(CapBypassTenantIsolation)
}

func (r Role) String() string {
	return string(r)
}
