package tenant

import (
	"github.com/fla7a/backend/internal/domain/tenancy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Callback names. Creates are left alone: new entities carry their tenant
// explicitly.
const (
	queryHook  = "tenant:before_query"
	updateHook = "tenant:before_update"
	deleteHook = "tenant:before_delete"
	rowHook    = "tenant:before_row"
)

// TenantCallback adds the context tenant to statements on tenant-owned
// tables that do not already filter on it
type TenantCallback struct {
	tenantColumn string
	required     bool
}

// NewTenantCallback filters on tenantColumn, or on Column when empty. With
// required set, a statement without a context tenant fails with
// ErrTenantIDRequired instead of running unfiltered.
func NewTenantCallback(tenantColumn string, required bool) *TenantCallback {
	if tenantColumn == "" {
		tenantColumn = Column
	}
	return &TenantCallback{tenantColumn: tenantColumn, required: required}
}

// RegisterCallbacks installs the filter before query, update, delete and
// raw row processing
func (tc *TenantCallback) RegisterCallbacks(db *gorm.DB) {
	cb := db.Callback()
	_ = cb.Query().Before("gorm:query").Register(queryHook, tc.filter)
	_ = cb.Update().Before("gorm:update").Register(updateHook, tc.filter)
	_ = cb.Delete().Before("gorm:delete").Register(deleteHook, tc.filter)
	_ = cb.Row().Before("gorm:row").Register(rowHook, tc.filter)
}

func (tc *TenantCallback) filter(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped || !tc.ownsTenantColumn(stmt) {
		return
	}
	if where, ok := stmt.Clauses["WHERE"].Expression.(clause.Where); ok && tc.mentionsTenant(where.Exprs) {
		return
	}

	tenantID := tenancy.TenantID(stmt.Context)
	if tenantID == "" {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: tc.tenantColumn},
		Value:  tenantID,
	}}})
}

func (tc *TenantCallback) ownsTenantColumn(stmt *gorm.Statement) bool {
	return stmt.Schema != nil && stmt.Schema.LookUpField(tc.tenantColumn) != nil
}

// mentionsTenant looks for an equality or IN condition on the tenant column,
// descending into AND groups
func (tc *TenantCallback) mentionsTenant(exprs []clause.Expression) bool {
	for _, expr := range exprs {
		var col any
		switch e := expr.(type) {
		case clause.Eq:
			col = e.Column
		case clause.IN:
			col = e.Column
		case clause.AndConditions:
			if tc.mentionsTenant(e.Exprs) {
				return true
			}
			continue
		default:
			continue
		}
		if c, ok := col.(clause.Column); ok && c.Name == tc.tenantColumn {
			return true
		}
	}
	return false
}

// EnableAutoTenantFilter installs the callbacks on db for Column
func EnableAutoTenantFilter(db *gorm.DB, required bool) {
	NewTenantCallback(Column, required).RegisterCallbacks(db)
}

// DisableAutoTenantFilter removes the callbacks
func DisableAutoTenantFilter(db *gorm.DB) {
	cb := db.Callback()
	_ = cb.Query().Remove(queryHook)
	_ = cb.Update().Remove(updateHook)
	_ = cb.Delete().Remove(deleteHook)
	_ = cb.Row().Remove(rowHook)
}
