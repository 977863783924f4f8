package handler

import (
	"context"

	identityapp "github.com/fla7a/backend/internal/application/identity"
	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TenantHandler serves the caller's tenant context and tenant administration
type TenantHandler struct {
	BaseHandler
	tenantService *identityapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// TenantContextResponse describes how the request was attributed
type TenantContextResponse struct {
	TenantID string              `json:"tenant_id"`
	Source   tenancy.Source      `json:"source"`
	User     *identity.Principal `json:"user"`
}

// CreateTenantRequest is the body of POST /admin/tenants
type CreateTenantRequest struct {
	Code  string `json:"code" binding:"required,tenant_code"`
	Name  string `json:"name" binding:"required,max=200"`
	ICE   string `json:"ice" binding:"omitempty,ice"`
	Phone string `json:"phone" binding:"omitempty,ma_phone"`
}

// Current godoc
// @Summary      Resolved tenant and caller of the request
// @Tags         tenancy
// @Success      200 {object} dto.Response
// @Router       /tenant [get]
func (h *TenantHandler) Current(c *gin.Context) {
	rc := tenancy.FromContext(c.Request.Context())
	h.Success(c, TenantContextResponse{
		TenantID: rc.TenantID,
		Source:   rc.Source,
		User:     rc.User,
	})
}

// Create godoc
// @Summary      Register a tenant
// @Tags         admin
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /admin/tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if !h.bindStrictJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), identityapp.CreateTenantInput{
		Code:  req.Code,
		Name:  req.Name,
		ICE:   req.ICE,
		Phone: req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// GetByCode godoc
// @Summary      Get a tenant by code
// @Tags         admin
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /admin/tenants/{code} [get]
func (h *TenantHandler) GetByCode(c *gin.Context) {
	var req dto.CodeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid tenant code")
		return
	}

	tenant, err := h.tenantService.GetByCode(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Suspend godoc
// @Summary      Suspend a tenant
// @Tags         admin
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /admin/tenants/{code}/suspend [post]
func (h *TenantHandler) Suspend(c *gin.Context) {
	h.changeStatus(c, h.tenantService.Suspend)
}

// Activate godoc
// @Summary      Reactivate a suspended tenant
// @Tags         admin
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /admin/tenants/{code}/activate [post]
func (h *TenantHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.tenantService.Activate)
}

func (h *TenantHandler) changeStatus(c *gin.Context, apply func(context.Context, string) (*identityapp.TenantDTO, error)) {
	var req dto.CodeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid tenant code")
		return
	}

	tenant, err := apply(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}
