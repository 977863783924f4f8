// Package tenancy decides which tenant a request belongs to and whether the
// authenticated caller may act on it.
//
// The per-request state lives in a RequestContext carried by
// context.Context. Each pipeline stage derives a new context: the resolver
// attaches the tenant, authentication attaches the principal, and the guard
// only reads.
package tenancy

import (
	"context"

	"github.com/fla7a/backend/internal/domain/identity"
)

type requestContextKey struct{}

// RequestContext is the tenancy state of a single request.
type RequestContext struct {
	// TenantID is the resolved tenant identifier; empty means none.
	TenantID string
	// Source records how TenantID was obtained.
	Source Source
	// User is the authenticated caller; nil means unauthenticated.
	User *identity.Principal
}

// HasTenant reports whether a tenant was resolved
func (rc RequestContext) HasTenant() bool {
	return rc.TenantID != ""
}

// FromContext returns the request's tenancy state. A context that never went
// through the pipeline yields the zero RequestContext.
func FromContext(ctx context.Context) RequestContext {
	if ctx == nil {
		return RequestContext{}
	}
	rc, _ := ctx.Value(requestContextKey{}).(RequestContext)
	return rc
}

// WithResolution returns a copy of ctx carrying the resolver's outcome.
func WithResolution(ctx context.Context, res Resolution) context.Context {
	rc := FromContext(ctx)
	rc.TenantID = res.TenantID
	rc.Source = res.Source
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	rc := FromContext(ctx)
	rc.User = p
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// TenantID is a shortcut for FromContext(ctx).TenantID
func TenantID(ctx context.Context) string {
	return FromContext(ctx).TenantID
}

// PrincipalFrom is a shortcut for FromContext(ctx).User
func PrincipalFrom(ctx context.Context) *identity.Principal {
	return FromContext(ctx).User
}
