package identity

import (
	"context"
	"time"

	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned when a token cannot be revoked
var ErrInvalidToken = shared.NewDomainError("INVALID_TOKEN", "Invalid or expired token")

// AuthService handles session operations on bearer tokens issued elsewhere
type AuthService struct {
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Logout revokes token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil || claims.ID == "" {
		return ErrInvalidToken
	}

	ttl := claims.RemainingTTL(s.now())
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}

	s.logger.Info("Token revoked",
		zap.String("user_id", claims.UserID),
		zap.Duration("ttl", ttl))
	return nil
}
