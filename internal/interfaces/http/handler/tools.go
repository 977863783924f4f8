package handler

import (
	"time"

	"github.com/fla7a/backend/internal/application/tools"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ToolsHandler serves the stateless Moroccan helpers: the agricultural
// calendar and identifier checks
type ToolsHandler struct {
	BaseHandler
	location *time.Location
	now      func() time.Time
}

// NewToolsHandler creates a ToolsHandler. Dates without a zone are read in
// loc, Africa/Casablanca in production.
func NewToolsHandler(loc *time.Location) *ToolsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ToolsHandler{location: loc, now: time.Now}
}

// CalendarQuery holds the query parameters of GET /calendar
type CalendarQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ValidateIdentifiersRequest is the body of POST /tools/validate. Omitted
// fields are not checked.
type ValidateIdentifiersRequest struct {
	CIN   *string `json:"cin"`
	ICE   *string `json:"ice"`
	RIB   *string `json:"rib"`
	Phone *string `json:"phone"`
}

// Calendar godoc
// @Summary      Agricultural campaign and season of a date
// @Tags         tools
// @Param        date query string false "YYYY-MM-DD, defaults to today"
// @Success      200 {object} dto.Response
// @Router       /calendar [get]
func (h *ToolsHandler) Calendar(c *gin.Context) {
	var query CalendarQuery
	if !h.bindQuery(c, &query) {
		return
	}

	day := h.now().In(h.location)
	if query.Date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, query.Date, h.location)
		if err != nil {
			h.ValidationError(c, []dto.ValidationDetail{{Field: "date", Tag: "datetime", Message: "Invalid date format"}})
			return
		}
		day = parsed
	}
	h.Success(c, tools.Calendar(day))
}

// ValidateIdentifiers godoc
// @Summary      Check CIN, ICE, RIB and phone values
// @Tags         tools
// @Success      200 {object} dto.Response
// @Router       /tools/validate [post]
func (h *ToolsHandler) ValidateIdentifiers(c *gin.Context) {
	var req ValidateIdentifiersRequest
	if !h.bindStrictJSON(c, &req) {
		return
	}
	h.Success(c, tools.ValidateIdentifiers(tools.IdentifiersInput{
		CIN:   req.CIN,
		ICE:   req.ICE,
		RIB:   req.RIB,
		Phone: req.Phone,
	}))
}
