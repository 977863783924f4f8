package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fla7a/backend/internal/domain/hr"
	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/invoicing"
	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite DB with every table migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive across statements
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&identity.Tenant{},
		&hr.Employee{},
		&invoicing.Invoice{},
		&invoicing.InvoiceLine{},
		&invoicing.InvoiceSequence{},
	))
	return Wrap(db).DB
}

func tenantCtx(tenantID string) context.Context {
	return tenancy.WithResolution(context.Background(), tenancy.Resolution{
		TenantID: tenantID,
		Source:   tenancy.SourceHeader,
	})
}

func newEmployee(t *testing.T, tenantID, first, cin string) *hr.Employee {
	t.Helper()
	e, err := hr.NewEmployee(tenantID, hr.NewEmployeeInput{
		FirstName: first,
		LastName:  "Alaoui",
		CIN:       cin,
		Phone:     "0612345678",
	})
	require.NoError(t, err)
	return e
}

func newInvoice(t *testing.T, tenantID string, issued time.Time) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(tenantID, invoicing.NewInvoiceInput{
		CustomerName: "Coopérative Atlas",
		CustomerICE:  "001525374000087",
		TVARate:      morocco.TVA20,
		IssuedAt:     issued,
		Lines: []invoicing.LineInput{
			{Description: "Engrais NPK", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("45.50")},
			{Description: "Irrigation", Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.NewFromInt(120)},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestGormTenantRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tn, err := identity.NewTenant("atlas", "Domaine Atlas", "001525374000087", "0522123456")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tn))

	t.Run("finds by code ignoring case", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "ATLAS")
		require.NoError(t, err)
		assert.Equal(t, tn.ID, found.ID)
		assert.Equal(t, "+212522123456", found.Phone)
	})

	t.Run("reports existence", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, "atlas")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCode(ctx, "souss")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, err := repo.FindByCode(ctx, "souss")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("saves status changes", func(t *testing.T) {
		require.NoError(t, tn.Suspend())
		require.NoError(t, repo.Save(ctx, tn))

		found, err := repo.FindByCode(ctx, "atlas")
		require.NoError(t, err)
		assert.False(t, found.IsActive())
	})
}

func TestGormEmployeeRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	karim := newEmployee(t, "atlas", "karim", "ab123456")
	salma := newEmployee(t, "atlas", "salma", "C98765")
	other := newEmployee(t, "souss", "youssef", "JK11111")
	for _, e := range []*hr.Employee{karim, salma, other} {
		require.NoError(t, repo.Create(ctx, e))
	}

	t.Run("finds within tenant", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "atlas", karim.ID)
		require.NoError(t, err)
		assert.Equal(t, "AB123456", found.CIN)
		assert.Equal(t, "Karim Alaoui", found.FullName())
	})

	t.Run("does not cross tenants", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "souss", karim.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists one tenant with total", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "first_name"
		filter.OrderDir = "asc"

		items, total, err := repo.List(ctx, "atlas", filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		assert.Equal(t, "Karim", items[0].FirstName)
		assert.Equal(t, "Salma", items[1].FirstName)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.Filter{Page: 2, PageSize: 1, OrderBy: "first_name", OrderDir: "asc"}
		items, total, err := repo.List(ctx, "atlas", filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Salma", items[0].FirstName)
	})

	t.Run("searches names and CIN", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "c987"
		items, total, err := repo.List(ctx, "atlas", filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, salma.ID, items[0].ID)
	})

	t.Run("checks CIN per tenant", func(t *testing.T) {
		exists, err := repo.ExistsByCIN(ctx, "atlas", "AB123456")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCIN(ctx, "souss", "AB123456")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("request tenant filters reads without explicit scope", func(t *testing.T) {
		var found []hr.Employee
		require.NoError(t, db.WithContext(tenantCtx("souss")).Find(&found).Error)
		require.Len(t, found, 1)
		assert.Equal(t, other.ID, found[0].ID)
	})

	t.Run("empty tenant is rejected", func(t *testing.T) {
		_, _, err := repo.List(ctx, "", shared.DefaultFilter())
		assert.Error(t, err)
	})

	t.Run("request tenant does not widen an explicit scope", func(t *testing.T) {
		items, total, err := repo.List(tenantCtx("souss"), "atlas", shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})
}

func TestGormInvoiceRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	issued := time.Date(2024, time.October, 3, 10, 0, 0, 0, time.UTC)

	t.Run("numbers invoices per tenant and year", func(t *testing.T) {
		first := newInvoice(t, "atlas", issued)
		second := newInvoice(t, "atlas", issued)
		otherTenant := newInvoice(t, "souss", issued)
		nextYear := newInvoice(t, "atlas", issued.AddDate(1, 0, 0))

		require.NoError(t, repo.CreateNumbered(ctx, first))
		require.NoError(t, repo.CreateNumbered(ctx, second))
		require.NoError(t, repo.CreateNumbered(ctx, otherTenant))
		require.NoError(t, repo.CreateNumbered(ctx, nextYear))

		assert.Equal(t, "FLA-2024-00001", first.Number)
		assert.Equal(t, "FLA-2024-00002", second.Number)
		assert.Equal(t, "FLA-2024-00001", otherTenant.Number)
		assert.Equal(t, "FLA-2025-00001", nextYear.Number)

		var seq invoicing.InvoiceSequence
		require.NoError(t, db.Where("tenant_id = ? AND year = ?", "atlas", 2024).Take(&seq).Error)
		assert.Equal(t, 2, seq.LastValue)
	})

	t.Run("loads invoice with ordered lines", func(t *testing.T) {
		inv := newInvoice(t, "atlas", issued)
		require.NoError(t, repo.CreateNumbered(ctx, inv))

		found, err := repo.FindByID(ctx, "atlas", inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.Number, found.Number)
		assert.Equal(t, "2024/2025", found.Campaign)
		assert.True(t, decimal.NewFromInt(906).Equal(found.TTC), "ttc = %s", found.TTC)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, 1, found.Lines[0].Position)
		assert.Equal(t, "Engrais NPK", found.Lines[0].Description)
		assert.True(t, decimal.NewFromInt(300).Equal(found.Lines[1].Amount))
	})

	t.Run("hides other tenants' invoices", func(t *testing.T) {
		inv := newInvoice(t, "atlas", issued)
		require.NoError(t, repo.CreateNumbered(ctx, inv))

		_, err := repo.FindByID(ctx, "souss", inv.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctx, "atlas", uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
