package handler

import (
	"time"

	invoicingapp "github.com/fla7a/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvoiceHandler serves quotes and invoices
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceLineRequest is one requested line. Quantity and unit price accept
// JSON numbers or decimal strings.
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// QuoteRequest is the body of POST /invoices/quote
type QuoteRequest struct {
	TVARate string               `json:"tva_rate" binding:"required,tva_rate"`
	Lines   []InvoiceLineRequest `json:"lines" binding:"required,min=1,max=200,dive"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	CustomerName string               `json:"customer_name" binding:"required,max=200"`
	CustomerICE  string               `json:"customer_ice" binding:"omitempty,ice"`
	TVARate      string               `json:"tva_rate" binding:"required,tva_rate"`
	IssuedAt     *time.Time           `json:"issued_at"`
	Lines        []InvoiceLineRequest `json:"lines" binding:"required,min=1,max=200,dive"`
}

func toLineInputs(lines []InvoiceLineRequest) []invoicingapp.LineInput {
	out := make([]invoicingapp.LineInput, len(lines))
	for i, l := range lines {
		out[i] = invoicingapp.LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}

// Quote godoc
// @Summary      Price invoice lines without issuing an invoice
// @Tags         invoices
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /invoices/quote [post]
func (h *InvoiceHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !h.bindStrictJSON(c, &req) {
		return
	}

	quote, err := h.invoiceService.Quote(c.Request.Context(), invoicingapp.QuoteInput{
		TVARate: req.TVARate,
		Lines:   toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Create godoc
// @Summary      Issue an invoice with the tenant's next number
// @Tags         invoices
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if !h.bindStrictJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), requestTenant(c), invoicingapp.CreateInvoiceInput{
		CustomerName: req.CustomerName,
		CustomerICE:  req.CustomerICE,
		TVARate:      req.TVARate,
		IssuedAt:     req.IssuedAt,
		Lines:        toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Get godoc
// @Summary      Get an invoice
// @Tags         invoices
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), requestTenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
