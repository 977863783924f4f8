package middleware

import (
	"context"
	"errors"

	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/metrics"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TenantResolver attaches the request's tenant, if any, to the request
// context. It never rejects a request; TenantGuard does that.
func TenantResolver(resolver *tenancy.Resolver, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := resolver.ResolveRequest(c.Request)

		ctx := tenancy.WithResolution(c.Request.Context(), res)
		if res.TenantID != "" {
			ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), res.TenantID)
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.String("tenant_id", res.TenantID),
				attribute.String("tenant_source", string(res.Source)),
			)
		}
		c.Request = c.Request.WithContext(ctx)

		if m != nil {
			m.TenantResolutions.WithLabelValues(string(res.Source)).Inc()
		}

		c.Next()
	}
}

// guardFailure describes how one guard failure is reported
type guardFailure struct {
	code       string
	messageKey string
	outcome    string
}

var guardFailures = []struct {
	err error
	guardFailure
}{
	{tenancy.ErrMissingTenant, guardFailure{dto.ErrCodeTenantMissing, i18n.KeyTenantMissing, metrics.OutcomeMissing}},
	{tenancy.ErrUnauthenticated, guardFailure{dto.ErrCodeUnauthenticated, i18n.KeyUnauthenticated, metrics.OutcomeAnonymous}},
	{tenancy.ErrTenantMismatch, guardFailure{dto.ErrCodeTenantMismatch, i18n.KeyTenantMismatch, metrics.OutcomeMismatched}},
}

// TenantGuard lets a request through only when tenancy.Authorize allows it.
// Rejections carry a stable code and a message in the caller's language.
func TenantGuard(translator *i18n.Translator, m *metrics.Metrics) gin.HandlerFunc {
	observe := func(outcome string) {
		if m != nil {
			m.GuardDecisions.WithLabelValues(outcome).Inc()
		}
	}

	return func(c *gin.Context) {
		rc := tenancy.FromContext(c.Request.Context())

		err := tenancy.Authorize(rc)
		if err == nil {
			if rc.User.Role.BypassesTenantIsolation() {
				observe(metrics.OutcomeBypassed)
			} else {
				observe(metrics.OutcomeAllowed)
			}
			c.Next()
			return
		}

		failure := guardFailure{dto.ErrCodeForbidden, i18n.KeyForbidden, metrics.OutcomeMismatched}
		for _, f := range guardFailures {
			if errors.Is(err, f.err) {
				failure = f.guardFailure
				break
			}
		}
		observe(failure.outcome)

		logger.L(c.Request.Context()).Warn("Tenant guard rejected request",
			zap.String("code", failure.code),
			zap.String("tenant_source", string(rc.Source)),
		)

		abortWithCode(c, translator, failure.code, failure.messageKey)
	}
}

// SuspensionChecker tells whether a tenant is suspended.
// *identityapp.TenantService implements it.
type SuspensionChecker interface {
	IsSuspended(ctx context.Context, tenantID string) (bool, error)
}

// RejectSuspendedTenant refuses requests for a suspended tenant. It runs
// after TenantGuard; callers that bypass tenant isolation are let through so
// that a platform administrator can still inspect the tenant.
func RejectSuspendedTenant(checker SuspensionChecker, translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rc := tenancy.FromContext(ctx)
		if rc.TenantID == "" || (rc.User != nil && rc.User.Role.BypassesTenantIsolation()) {
			c.Next()
			return
		}

		suspended, err := checker.IsSuspended(ctx, rc.TenantID)
		if err != nil {
			logger.L(ctx).Error("Failed to load tenant status", zap.Error(err))
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeInternal),
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Internal server error", GetRequestID(c)))
			return
		}
		if suspended {
			logger.L(ctx).Warn("Request for suspended tenant rejected")
			abortWithCode(c, translator, dto.ErrCodeTenantSuspended, i18n.KeyTenantSuspended)
			return
		}
		c.Next()
	}
}

// abortWithCode writes an error response whose message is translated to the
// caller's Accept-Language
func abortWithCode(c *gin.Context, translator *i18n.Translator, code, messageKey string) {
	status := dto.GetHTTPStatus(code)
	message := translator.TranslateFor(c.GetHeader("Accept-Language"), messageKey)
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
