// Package router assembles the gin engine: global middleware, the tenancy
// pipeline and the versioned API groups.
package router

import (
	"net/http"
	"strings"

	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/metrics"
	"github.com/fla7a/backend/internal/interfaces/http/handler"
	"github.com/fla7a/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// authPrefix is skipped by the tenant resolver but still needs a valid
// token: logout revokes it.
const authPrefix = "/api/v1/auth"

// DocsPath serves the Swagger UI and doc.json. It sits under a prefix the
// tenant resolver excludes.
const DocsPath = "/api/docs"

// RouteRegistrar registers routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds registrars to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup is a prefix with its own middleware and routes
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []routeDefinition
	subgroups  []*DomainGroup
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group that inherits this group's middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the API endpoints to mount
type Handlers struct {
	Health    *handler.HealthHandler
	Tenants   *handler.TenantHandler
	Employees *handler.EmployeeHandler
	Invoices  *handler.InvoiceHandler
	Tools     *handler.ToolsHandler
	Auth      *handler.AuthHandler
}

// Config is everything the engine is built from
type Config struct {
	ServiceName    string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	MetricsPath    string // empty disables the endpoint
	TracingEnabled bool
	Resolver       *tenancy.Resolver
	TenantStatus   middleware.SuspensionChecker // nil serves suspended tenants
	Translator     *i18n.Translator
	JWT            middleware.JWTMiddlewareConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string
	Handlers       Handlers
}

// New builds the engine. The order of the global chain matters: the request
// ID feeds the access log and the spans, and the tenant resolver and JWTAuth
// must run before any TenantGuard.
func New(cfg Config) (*gin.Engine, error) {
	if err := middleware.SetupValidator(cfg.Resolver); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Localizer(cfg.Translator),
		logger.Recovery(cfg.Logger),
		logger.GinMiddleware(cfg.Logger),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanEnricher(),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.GinMiddleware())
		if cfg.MetricsPath != "" {
			engine.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
		}
	}
	jwtCfg := cfg.JWT
	jwtCfg.IgnoreInvalidToken = func(path string) bool {
		return cfg.Resolver.IsExcluded(path) && !strings.HasPrefix(path, authPrefix)
	}
	engine.Use(
		middleware.TenantResolver(cfg.Resolver, cfg.Metrics),
		middleware.JWTAuth(jwtCfg),
	)

	h := cfg.Handlers
	engine.GET("/health", h.Health.Live)
	engine.GET("/health/ready", h.Health.Ready)
	engine.GET(DocsPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	guard := middleware.TenantGuard(cfg.Translator, cfg.Metrics)
	// Admin routes skip the suspension check so a suspended tenant can be
	// reactivated.
	tenantScoped := []gin.HandlerFunc{guard}
	if cfg.TenantStatus != nil {
		tenantScoped = append(tenantScoped, middleware.RejectSuspendedTenant(cfg.TenantStatus, cfg.Translator))
	}
	requireCap := func(c identity.Capability) gin.HandlerFunc {
		return middleware.RequireCapability(c, cfg.Translator)
	}

	auth := NewDomainGroup("auth", "/auth").
		POST("/logout", h.Auth.Logout)

	tenancyGroup := NewDomainGroup("tenancy", "").Use(tenantScoped...).
		GET("/tenant", h.Tenants.Current).
		GET("/calendar", h.Tools.Calendar).
		POST("/tools/validate", h.Tools.ValidateIdentifiers)

	admin := NewDomainGroup("admin", "/admin").Use(guard, requireCap(identity.CapManageTenants))
	admin.Group("tenants", "/tenants").
		POST("", h.Tenants.Create).
		GET("/:code", h.Tenants.GetByCode).
		POST("/:code/suspend", h.Tenants.Suspend).
		POST("/:code/activate", h.Tenants.Activate)

	employees := NewDomainGroup("employees", "/employees").Use(tenantScoped...).
		GET("", h.Employees.List).
		GET("/:id", h.Employees.Get).
		POST("", requireCap(identity.CapManageEmployees), h.Employees.Create)

	invoices := NewDomainGroup("invoices", "/invoices").Use(tenantScoped...).
		POST("/quote", h.Invoices.Quote).
		POST("", requireCap(identity.CapIssueInvoices), h.Invoices.Create).
		GET("/:id", h.Invoices.Get)

	NewRouter(engine).
		Register(auth, tenancyGroup, admin, employees, invoices).
		Setup()

	return engine, nil
}
