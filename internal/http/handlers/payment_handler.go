package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// PaymentHandler обслуживает маршруты платежей.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler создаёт новый хэндлер.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type paymentRequest struct {
	InvoiceID   *uuid.UUID `json:"invoice_id"`
	ClientID    uuid.UUID  `json:"client_id" binding:"required"`
	Amount      float64    `json:"amount" binding:"required"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       *string    `json:"notes"`
}

// Create обрабатывает POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req paymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, invoice, err := h.payments.RecordPayment(c.Request.Context(), service.PaymentInput{
		InvoiceID:   req.InvoiceID,
		ClientID:    req.ClientID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Notes:       req.Notes,
	}, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"payment": payment}
	if invoice != nil {
		resp["invoice"] = invoice
	}

	c.JSON(http.StatusCreated, resp)
}
