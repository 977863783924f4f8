package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.Emit()
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx := tenancy.WithResolution(context.Background(), tenancy.Resolution{TenantID: "acme", Source: tenancy.SourceSubdomain})
	_, span := StartServiceSpan(ctx, "invoice", "create", AttrInvoiceNumber, "FLA-2025-00001", "lines", 3)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.create", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "acme", attrs[AttrTenantID])
	assert.Equal(t, "FLA-2025-00001", attrs[AttrInvoiceNumber])
	assert.Equal(t, "3", attrs["lines"])
}

func TestStartServiceSpan_NoTenant(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := StartServiceSpan(context.Background(), "calendar", "lookup")
	span.End()

	_, ok := attrMap(sr.Ended()[0].Attributes())[AttrTenantID]
	assert.False(t, ok)
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := StartServiceSpan(context.Background(), "employee", "create")
	SetAttributes(span,
		"str", "v",
		"int64", int64(7),
		"float", 1.5,
		"bool", true,
		"duration", time.Second,
		42, "non-string key dropped",
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Equal(t, "v", attrs["str"])
	assert.Equal(t, "7", attrs["int64"])
	assert.Equal(t, "1.5", attrs["float"])
	assert.Equal(t, "true", attrs["bool"])
	assert.Equal(t, "1s", attrs["duration"])
	assert.Len(t, attrs, 5)

	SetAttributes(nil, "ignored", 1)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := StartServiceSpan(context.Background(), "invoice", "create")
	RecordError(span, errors.New("sequence locked"))
	RecordError(span, nil)
	RecordError(nil, errors.New("no span"))
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "sequence locked", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
}
