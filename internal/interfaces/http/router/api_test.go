package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/fla7a/backend/docs"
	hrapp "github.com/fla7a/backend/internal/application/hr"
	identityapp "github.com/fla7a/backend/internal/application/identity"
	invoicingapp "github.com/fla7a/backend/internal/application/invoicing"
	"github.com/fla7a/backend/internal/domain/hr"
	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/invoicing"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/auth"
	"github.com/fla7a/backend/internal/infrastructure/config"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/metrics"
	"github.com/fla7a/backend/internal/infrastructure/persistence"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/fla7a/backend/internal/interfaces/http/handler"
	"github.com/fla7a/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testAPI struct {
	engine  *gin.Engine
	jwt     *auth.JWTService
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&identity.Tenant{},
		&hr.Employee{},
		&invoicing.Invoice{},
		&invoicing.InvoiceLine{},
		&invoicing.InvoiceSequence{},
	))
	database := persistence.Wrap(db)

	log := zap.NewNop()
	translator, err := i18n.New("fr")
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	resolver := tenancy.NewResolver(tenancy.DefaultResolverConfig())
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-at-least-32-bytes",
		Issuer:                "fla7a",
		AccessTokenExpiration: time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	tenantService := identityapp.NewTenantService(persistence.NewGormTenantRepository(db), resolver, log)

	engine, err := New(Config{
		ServiceName:  "fla7a-test",
		Logger:       log,
		Metrics:      m,
		MetricsPath:  "/metrics",
		Resolver:     resolver,
		TenantStatus: tenantService,
		Translator:   translator,
		JWT: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Translator:     translator,
		},
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		MaxBodySize: 1 << 20,
		Handlers: Handlers{
			Health:  handler.NewHealthHandler("fla7a", "test", database),
			Tenants: handler.NewTenantHandler(tenantService),
			Employees: handler.NewEmployeeHandler(hrapp.NewEmployeeService(
				persistence.NewGormEmployeeRepository(db))),
			Invoices: handler.NewInvoiceHandler(invoicingapp.NewInvoiceService(
				persistence.NewGormInvoiceRepository(db), m.InvoicesIssued)),
			Tools: handler.NewToolsHandler(time.UTC),
			Auth:  handler.NewAuthHandler(identityapp.NewAuthService(jwtService, blacklist, log)),
		},
	})
	require.NoError(t, err)

	return &testAPI{engine: engine, jwt: jwtService, metrics: m}
}

func (a *testAPI) token(t *testing.T, role identity.Role, tenantID string) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(identity.Principal{
		UserID:   "user-" + strings.ToLower(string(role)),
		Username: "test",
		Role:     role,
		TenantID: tenantID,
	})
	require.NoError(t, err)
	return token
}

type call struct {
	method string
	path   string
	host   string
	tenant string
	token  string
	body   string
	lang   string
}

func (a *testAPI) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if c.body != "" {
		body = bytes.NewBufferString(c.body)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Host = "localhost"
	if c.host != "" {
		req.Host = c.host
	}
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tenant != "" {
		req.Header.Set("X-Tenant-ID", c.tenant)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (dto.Response, json.RawMessage) {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	return resp, raw.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp, _ := decode(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func TestAPI_HealthSkipsTenancy(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = api.do(t, call{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_PublicPathsIgnoreStaleTokens(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, call{method: http.MethodGet, path: "/health", token: "expired-or-garbage"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodGet, path: "/health/ready", token: "expired-or-garbage"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// logout still needs a token it can revoke
	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/auth/logout", token: "expired-or-garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/tenant", tenant: "acme", token: "expired-or-garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_SwaggerDocs(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, call{method: http.MethodGet, path: DocsPath + "/doc.json"})
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths["/invoices"], "post")
	assert.Contains(t, doc.Paths["/admin/tenants/{code}/suspend"], "post")
	assert.Contains(t, doc.Paths["/tools/validate"], "post")

	// docs sit outside tenancy, so a stale token is ignored there too
	w = api.do(t, call{method: http.MethodGet, path: DocsPath + "/index.html", token: "stale"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestAPI_TenantGuard(t *testing.T) {
	api := newTestAPI(t)
	acmeManager := api.token(t, identity.RoleManager, "acme")

	tests := []struct {
		name       string
		call       call
		wantStatus int
		wantCode   string
		wantSource tenancy.Source
	}{
		{
			name:       "no tenant",
			call:       call{token: acmeManager},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeTenantMissing,
		},
		{
			name:       "reserved subdomain is no tenant",
			call:       call{host: "www.fla7a.ma", token: acmeManager},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeTenantMissing,
		},
		{
			name:       "anonymous",
			call:       call{tenant: "acme"},
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrCodeUnauthenticated,
		},
		{
			name:       "other tenant",
			call:       call{tenant: "beta", token: acmeManager},
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrCodeTenantMismatch,
		},
		{
			name:       "invalid token",
			call:       call{tenant: "acme", token: "not-a-token"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrCodeTokenInvalid,
		},
		{
			name:       "header",
			call:       call{tenant: "acme", token: acmeManager},
			wantStatus: http.StatusOK,
			wantSource: tenancy.SourceHeader,
		},
		{
			name:       "subdomain",
			call:       call{host: "acme.fla7a.ma:8080", token: acmeManager},
			wantStatus: http.StatusOK,
			wantSource: tenancy.SourceSubdomain,
		},
		{
			name:       "header wins over subdomain",
			call:       call{host: "beta.fla7a.ma", tenant: "acme", token: acmeManager},
			wantStatus: http.StatusOK,
			wantSource: tenancy.SourceHeader,
		},
		{
			name:       "super admin crosses tenants",
			call:       call{tenant: "beta", token: api.token(t, identity.RoleSuperAdmin, "")},
			wantStatus: http.StatusOK,
			wantSource: tenancy.SourceHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.call
			c.method, c.path = http.MethodGet, "/api/v1/tenant"
			w := api.do(t, c)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				return
			}
			_, data := decode(t, w)
			var got handler.TenantContextResponse
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(api.metrics.GuardDecisions.WithLabelValues(metrics.OutcomeMissing)))
	assert.Equal(t, float64(1), testutil.ToFloat64(api.metrics.GuardDecisions.WithLabelValues(metrics.OutcomeBypassed)))
}

func TestAPI_GuardMessagesAreLocalized(t *testing.T) {
	api := newTestAPI(t)

	messages := map[string]string{}
	for _, lang := range []string{"fr", "en", "ar"} {
		w := api.do(t, call{method: http.MethodGet, path: "/api/v1/tenant", lang: lang})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp, _ := decode(t, w)
		messages[lang] = resp.Error.Message
	}

	assert.NotEqual(t, messages["fr"], messages["en"])
	assert.NotEqual(t, messages["fr"], messages["ar"])
}

func TestAPI_EmployeesAreTenantScoped(t *testing.T) {
	api := newTestAPI(t)
	acme := api.token(t, identity.RoleManager, "acme")
	beta := api.token(t, identity.RoleAdmin, "beta")

	body := `{"first_name":"Amina","last_name":"Alaoui","cin":"BE123456","phone":"0612345678"}`
	w := api.do(t, call{method: http.MethodPost, path: "/api/v1/employees", tenant: "acme", token: acme, body: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/employees", tenant: "acme", token: acme, body: body})
	assert.Equal(t, http.StatusConflict, w.Code)

	// the same CIN is free in another tenant
	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/employees", tenant: "beta", token: beta, body: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, data := decode(t, w)
	var betaEmployee hrapp.EmployeeDTO
	require.NoError(t, json.Unmarshal(data, &betaEmployee))

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/employees", tenant: "acme", token: acme})
	require.Equal(t, http.StatusOK, w.Code)
	resp, _ := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/employees/" + betaEmployee.ID.String(), tenant: "acme", token: acme})
	assert.Equal(t, http.StatusNotFound, w.Code)

	operator := api.token(t, identity.RoleOperator, "acme")
	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/employees", tenant: "acme", token: operator, body: body})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/employees", tenant: "acme", token: operator})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_InvoiceNumbering(t *testing.T) {
	api := newTestAPI(t)
	acme := api.token(t, identity.RoleAccountant, "acme")
	beta := api.token(t, identity.RoleAccountant, "beta")

	body := `{
		"customer_name": "Coopérative Souss",
		"tva_rate": "TVA_20",
		"issued_at": "2024-10-15T09:00:00Z",
		"lines": [
			{"description": "Engrais NPK", "quantity": 10, "unit_price": "45.50"},
			{"description": "Semences", "quantity": "2.5", "unit_price": 120}
		]
	}`
	numberOf := func(w *httptest.ResponseRecorder) string {
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		_, data := decode(t, w)
		var got struct {
			Number string `json:"number"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		return got.Number
	}

	first := numberOf(api.do(t, call{method: http.MethodPost, path: "/api/v1/invoices", tenant: "acme", token: acme, body: body}))
	second := numberOf(api.do(t, call{method: http.MethodPost, path: "/api/v1/invoices", tenant: "acme", token: acme, body: body}))
	other := numberOf(api.do(t, call{method: http.MethodPost, path: "/api/v1/invoices", tenant: "beta", token: beta, body: body}))

	assert.Equal(t, "FLA-2024-00001", first)
	assert.Equal(t, "FLA-2024-00002", second)
	assert.Equal(t, "FLA-2024-00001", other)
	assert.Equal(t, float64(3), testutil.ToFloat64(api.metrics.InvoicesIssued.WithLabelValues("TVA_20")))

	agronomist := api.token(t, identity.RoleAgronomist, "acme")
	w := api.do(t, call{method: http.MethodPost, path: "/api/v1/invoices", tenant: "acme", token: agronomist, body: body})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// quoting needs no capability
	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/invoices/quote", tenant: "acme", token: agronomist,
		body: `{"tva_rate":"TVA_20","lines":[{"description":"x","quantity":1,"unit_price":100}]}`})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAPI_TenantAdministration(t *testing.T) {
	api := newTestAPI(t)
	body := `{"code":"ferme-atlas","name":"Ferme Atlas"}`

	w := api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants", tenant: "acme",
		token: api.token(t, identity.RoleAdmin, "acme"), body: body})
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := api.token(t, identity.RoleSuperAdmin, "")
	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants", tenant: "acme", token: root, body: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants", tenant: "acme", token: root, body: body})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/admin/tenants/ferme-atlas", tenant: "acme", token: root})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants", tenant: "acme", token: root,
		body: `{"code":"api","name":"Reserved"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SuspendedTenantIsRefused(t *testing.T) {
	api := newTestAPI(t)
	root := api.token(t, identity.RoleSuperAdmin, "")
	manager := api.token(t, identity.RoleManager, "rif")
	listEmployees := call{method: http.MethodGet, path: "/api/v1/employees", tenant: "rif", token: manager}

	w := api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants", tenant: "rif", token: root,
		body: `{"code":"rif","name":"Coop Rif"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, listEmployees)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants/rif/suspend", tenant: "rif", token: root})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants/rif/suspend", tenant: "rif", token: root})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(t, listEmployees)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeTenantSuspended, errorCode(t, w))

	// unregistered tenants are served
	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/employees", tenant: "acme",
		token: api.token(t, identity.RoleManager, "acme")})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/admin/tenants/rif/activate", tenant: "rif", token: root})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, listEmployees)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, identity.RoleManager, "acme")

	w := api.do(t, call{method: http.MethodGet, path: "/api/v1/tenant", tenant: "acme", token: token})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, call{method: http.MethodPost, path: "/api/v1/auth/logout", token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, call{method: http.MethodGet, path: "/api/v1/tenant", tenant: "acme", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, call{method: http.MethodGet, path: "/api/v1/tenant", tenant: "acme"})

	w := api.do(t, call{method: http.MethodGet, path: "/metrics"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fla7a_tenant_resolution_total{source="header"} 1`)
	assert.Contains(t, w.Body.String(), `fla7a_tenant_guard_decisions_total{outcome="unauthenticated"} 1`)
}
