package handler

import (
	"time"

	hrapp "github.com/fla7a/backend/internal/application/hr"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// EmployeeHandler serves the tenant's employees
type EmployeeHandler struct {
	BaseHandler
	employeeService *hrapp.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService *hrapp.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// CreateEmployeeRequest is the body of POST /employees
type CreateEmployeeRequest struct {
	FirstName string     `json:"first_name" binding:"required,max=100"`
	LastName  string     `json:"last_name" binding:"required,max=100"`
	CIN       string     `json:"cin" binding:"required,cin"`
	Phone     string     `json:"phone" binding:"omitempty,ma_phone"`
	RIB       string     `json:"rib" binding:"omitempty,rib"`
	Position  string     `json:"position" binding:"max=100"`
	HiredAt   *time.Time `json:"hired_at"`
}

// ListEmployeesQuery holds the query parameters of GET /employees
type ListEmployeesQuery struct {
	dto.ListRequest
}

// Create godoc
// @Summary      Hire an employee
// @Tags         employees
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if !h.bindStrictJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.Create(c.Request.Context(), requestTenant(c), hrapp.CreateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CIN:       req.CIN,
		Phone:     req.Phone,
		RIB:       req.RIB,
		Position:  req.Position,
		HiredAt:   req.HiredAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, employee)
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size, at most 100"
// @Param        search    query string false "Matches name or CIN"
// @Success      200 {object} dto.Response
// @Router       /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var query ListEmployeesQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.employeeService.List(c.Request.Context(), requestTenant(c), hrapp.EmployeeFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.OrderBy,
		SortDir:  query.OrderDir,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get an employee
// @Tags         employees
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	employee, err := h.employeeService.Get(c.Request.Context(), requestTenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}
