package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// InvoiceHandler обслуживает маршруты счетов.
type InvoiceHandler struct {
	invoices *service.InvoiceService
}

// NewInvoiceHandler создаёт новый хэндлер.
func NewInvoiceHandler(invoices *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

type invoiceRequest struct {
	ClientID       uuid.UUID        `json:"client_id" binding:"required"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	LineItems      models.LineItems `json:"line_items" binding:"required"`
	TaxRate        float64          `json:"tax_rate"`
	DiscountAmount float64          `json:"discount_amount"`
	DueDate        time.Time        `json:"due_date" binding:"required"`
	Notes          *string          `json:"notes"`
}

func (r invoiceRequest) toInput() service.InvoiceInput {
	return service.InvoiceInput{
		ClientID:       r.ClientID,
		ProjectID:      r.ProjectID,
		LineItems:      r.LineItems,
		TaxRate:        r.TaxRate,
		DiscountAmount: r.DiscountAmount,
		DueDate:        r.DueDate,
		Notes:          r.Notes,
	}
}

// Create обрабатывает POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req invoiceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), req.toInput(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// Get обрабатывает GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// List обрабатывает GET /invoices с фильтрами client_id и status.
func (h *InvoiceHandler) List(c *gin.Context) {
	clientID, err := common.ParseUUIDQuery(c, "client_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	status := c.Query("status")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	invoices, err := h.invoices.ListInvoices(c.Request.Context(), clientID, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// Update обрабатывает PUT /invoices/:id. Только для черновиков.
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req invoiceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.UpdateDraft(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Send обрабатывает POST /invoices/:id/send.
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoices.SendInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ListOverdue обрабатывает GET /invoices/overdue.
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	invoices, err := h.invoices.ListOverdue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// ListPayments обрабатывает GET /invoices/:id/payments.
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payments, err := h.invoices.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// Delete обрабатывает DELETE /invoices/:id. Только для черновиков.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.invoices.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "черновик удалён"})
}
