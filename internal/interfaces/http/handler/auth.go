package handler

import (
	"net/http"

	identityapp "github.com/fla7a/backend/internal/application/identity"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/fla7a/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves session endpoints. Login belongs to the identity
// provider that issues the tokens.
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Logout godoc
// @Summary      Revoke the bearer token
// @Tags         auth
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Missing bearer token")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}
