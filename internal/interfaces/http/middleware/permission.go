package middleware

import (
	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireCapability refuses callers whose role lacks capability. It runs
// after TenantGuard, so an anonymous caller here is still answered with
// ERR_UNAUTHENTICATED.
func RequireCapability(capability identity.Capability, translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := tenancy.PrincipalFrom(c.Request.Context())
		if principal == nil {
			abortWithCode(c, translator, dto.ErrCodeUnauthenticated, i18n.KeyUnauthenticated)
			return
		}

		if !principal.Can(capability) {
			logger.L(c.Request.Context()).Warn("Capability check failed",
				zap.String("role", principal.Role.String()),
				zap.Uint8("capability", uint8(capability)),
			)
			abortWithCode(c, translator, dto.ErrCodeForbidden, i18n.KeyForbidden)
			return
		}

		c.Next()
	}
}
