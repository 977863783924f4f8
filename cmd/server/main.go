package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/fla7a/backend/docs"
	hrapp "github.com/fla7a/backend/internal/application/hr"
	identityapp "github.com/fla7a/backend/internal/application/identity"
	invoicingapp "github.com/fla7a/backend/internal/application/invoicing"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/auth"
	"github.com/fla7a/backend/internal/infrastructure/config"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/metrics"
	"github.com/fla7a/backend/internal/infrastructure/persistence"
	"github.com/fla7a/backend/internal/infrastructure/telemetry"
	"github.com/fla7a/backend/internal/interfaces/http/handler"
	"github.com/fla7a/backend/internal/interfaces/http/middleware"
	"github.com/fla7a/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

//	@title			FLA7A Backend API
//	@version		1.0
//	@description	Multi-tenant agricultural ERP core: tenancy, employees, invoicing and Moroccan identifier tools.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting fla7a backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with SQL logged through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}

	// Token blacklist: Redis when configured, memory otherwise
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		addr := cfg.Redis.Host + ":" + strconv.Itoa(cfg.Redis.Port)
		client, err := auth.NewRedisClient(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			_ = client.Close()
		}()
		blacklist = auth.NewRedisTokenBlacklist(client)
		log.Info("Token blacklist backed by Redis", zap.String("addr", addr))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, revoked tokens are kept in memory")
	}

	translator, err := i18n.New(cfg.App.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.NewRegistry())
		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		if err := m.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			return fmt.Errorf("register db stats: %w", err)
		}
	}

	loc, err := time.LoadLocation("Africa/Casablanca")
	if err != nil {
		log.Warn("Africa/Casablanca zone unavailable, falling back to UTC", zap.Error(err))
		loc = time.UTC
	}

	resolver := tenancy.NewResolver(tenancy.ResolverConfig{
		HeaderName:           cfg.Tenancy.HeaderName,
		ExcludedPathPrefixes: nilIfEmpty(cfg.Tenancy.ExcludedPathPrefixes),
		ReservedSubdomains:   nilIfEmpty(cfg.Tenancy.ReservedSubdomains),
	})
	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories and services
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	var issued *prometheus.CounterVec
	if m != nil {
		issued = m.InvoicesIssued
	}
	tenantService := identityapp.NewTenantService(tenantRepo, resolver, log)
	authService := identityapp.NewAuthService(jwtService, blacklist, log)
	employeeService := hrapp.NewEmployeeService(employeeRepo)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, issued).InLocation(loc)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	engine, err := router.New(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
		Metrics:        m,
		MetricsPath:    metricsPath,
		TracingEnabled: cfg.Telemetry.Enabled,
		Resolver:       resolver,
		TenantStatus:   tenantService,
		Translator:     translator,
		JWT: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Translator:     translator,
		},
		CORS:           corsCfg,
		Security:       securityCfg,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Handlers: router.Handlers{
			Health:    handler.NewHealthHandler(cfg.App.Name, version, db),
			Tenants:   handler.NewTenantHandler(tenantService),
			Employees: handler.NewEmployeeHandler(employeeService),
			Invoices:  handler.NewInvoiceHandler(invoiceService),
			Tools:     handler.NewToolsHandler(loc),
			Auth:      handler.NewAuthHandler(authService),
		},
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// nilIfEmpty lets the resolver apply its defaults to unset lists
func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
