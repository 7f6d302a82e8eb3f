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

// ContractHandler обслуживает маршруты контрактов.
type ContractHandler struct {
	contracts *service.ContractService
}

// NewContractHandler создаёт новый хэндлер.
func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type contractRequest struct {
	Title          string           `json:"title" binding:"required"`
	ClientID       uuid.UUID        `json:"client_id" binding:"required"`
	ProjectID      *uuid.UUID       `json:"project_id"`
	Content        string           `json:"content" binding:"required"`
	LineItems      models.LineItems `json:"line_items"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

func (r contractRequest) toInput() service.ContractInput {
	return service.ContractInput{
		Title:          r.Title,
		ClientID:       r.ClientID,
		ProjectID:      r.ProjectID,
		Content:        r.Content,
		LineItems:      r.LineItems,
		ExpirationDate: r.ExpirationDate,
	}
}

// Create обрабатывает POST /contracts.
func (h *ContractHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req contractRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), req.toInput(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// Get обрабатывает GET /contracts/:id.
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// List обрабатывает GET /contracts с фильтрами client_id и status.
func (h *ContractHandler) List(c *gin.Context) {
	clientID, err := common.ParseUUIDQuery(c, "client_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	status := c.Query("status")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	contracts, err := h.contracts.ListContracts(c.Request.Context(), clientID, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts)
}

// Update обрабатывает PUT /contracts/:id. Только для черновиков.
func (h *ContractHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req contractRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.UpdateDraft(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Send обрабатывает POST /contracts/:id/send.
func (h *ContractHandler) Send(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.SendContract(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Sign обрабатывает POST /contracts/:id/sign — фиксация очередной подписи.
func (h *ContractHandler) Sign(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.RecordSignature(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// NeedsAttention обрабатывает GET /contracts/needs-attention.
func (h *ContractHandler) NeedsAttention(c *gin.Context) {
	contracts, err := h.contracts.ListNeedsAttention(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts)
}

// Delete обрабатывает DELETE /contracts/:id. Только для черновиков.
func (h *ContractHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.contracts.DeleteContract(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "черновик удалён"})
}
