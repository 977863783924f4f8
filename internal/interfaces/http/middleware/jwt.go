package middleware

import (
	"strings"

	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/auth"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Authorization header
const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional; revoked tokens are refused when set
	TokenBlacklist auth.TokenBlacklist
	// Translator renders the rejection message
	Translator *i18n.Translator
	// IgnoreInvalidToken, when set, names paths on which a bad token is
	// dropped and the request continues anonymous instead of being refused
	IgnoreInvalidToken func(path string) bool
}

// JWTAuth authenticates bearer tokens. A request without an Authorization
// header passes through anonymous, so TenantGuard can answer with
// ERR_UNAUTHENTICATED. A token that is present but malformed, expired or
// revoked is refused with 401, except on paths matched by
// IgnoreInvalidToken.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			c.Next()
			return
		}

		token, ok := BearerToken(c)
		if !ok {
			rejectToken(c, cfg, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, cfg, err)
			return
		}

		ctx := c.Request.Context()
		if cfg.TokenBlacklist != nil && claims.ID != "" {
			revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
			if err != nil {
				// fail open: the blacklist only shortens token lifetime
				logger.L(ctx).Error("Failed to check token blacklist",
					zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				rejectToken(c, cfg, auth.ErrTokenRevoked)
				return
			}
		}

		ctx = tenancy.WithPrincipal(ctx, claims.Principal())
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("user_id", claims.UserID),
			attribute.String("role", claims.Role),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func rejectToken(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.IgnoreInvalidToken != nil && cfg.IgnoreInvalidToken(c.Request.URL.Path) {
		logger.L(c.Request.Context()).Debug("Ignoring invalid token on public path",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
		return
	}
	logger.L(c.Request.Context()).Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	abortWithCode(c, cfg.Translator, dto.ErrCodeTokenInvalid, i18n.KeyInvalidToken)
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}
