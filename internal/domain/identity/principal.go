package identity

// Principal is the authenticated caller of a request, as established by the
// authentication layer. TenantID is the caller's home tenant.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenant_id"`
}

// Can reports whether the principal's role grants c
func (p *Principal) Can(c Capability) bool {
	if p == nil {
		return false
	}
	return p.Role.Has(c)
}
