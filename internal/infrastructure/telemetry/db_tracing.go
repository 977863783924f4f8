package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool
	LogFullSQL bool   // keep bound variables in db.statement
	DBName     string // reported as db.name
	// TracerProvider overrides the global provider, mainly for tests
	TracerProvider trace.TracerProvider
}

// RegisterDBTracing installs the otelgorm plugin so each statement becomes a
// child span of the request.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	var opts []otelgorm.Option
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.Bool("log_full_sql", cfg.LogFullSQL))
	return nil
}
