// Package tenant confines GORM statements to one tenant's rows.
//
// Repositories apply Scope explicitly with the tenant they were asked about.
// The callbacks in this package add the same condition from the request
// context to any statement on a tenant-owned table that lacks one.
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Find(&employees)
package tenant

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant column every tenant-owned table carries
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a statement needs a tenant and none is known
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// Condition is the WHERE expression restricting rows to tenantID
func Condition(tenantID string) clause.Expression {
	return clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: Column},
		Value:  tenantID,
	}
}

// Scope restricts a statement to tenantID. An empty tenantID fails the
// statement rather than widening it.
func Scope(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == "" {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(Condition(tenantID))
	}
}
