package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) {
	return "SELECT * FROM employees", 3
}

func TestGormLogger_LogMode(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, 0)

	changed, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
}

func TestGormLogger_Messages(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, 0)

	gormLog.Info(context.Background(), "info %s", "a")
	gormLog.Warn(context.Background(), "warn %s", "b")
	gormLog.Error(context.Background(), "error %s", "c")

	logs := recorded.All()
	require.Len(t, logs, 3)
	assert.Equal(t, "info a", logs[0].Message)
	assert.Equal(t, "warn b", logs[1].Message)
	assert.Equal(t, "error c", logs[2].Message)
}

func TestGormLogger_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Silent, 0)

	gormLog.Info(context.Background(), "x")
	gormLog.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))

	assert.Empty(t, recorded.All())
}

func TestGormLogger_TraceError(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

	ctx := tenancy.WithResolution(context.Background(), tenancy.Resolution{TenantID: "acme", Source: tenancy.SourceSubdomain})
	gormLog.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))

	logs := recorded.FilterMessage("SQL Error").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "acme", fieldMap(logs[0])["tenant_id"])
}

func TestGormLogger_TraceIgnoresNotFound(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, 0)

	gormLog.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_TraceSlow(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

	gormLog.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

	assert.Len(t, recorded.FilterMessage("Slow SQL").All(), 1)
}

func TestGormLogger_TraceQueryAtDebug(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info, 0)

	gormLog.Trace(context.Background(), time.Now(), sqlFn, nil)

	logs := recorded.FilterMessage("SQL Query").All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
