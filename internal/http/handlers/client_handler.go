package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// ClientHandler обслуживает маршруты клиентов.
type ClientHandler struct {
	clients *service.ClientService
}

// NewClientHandler создаёт новый хэндлер.
func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type clientRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	Notes       *string `json:"notes"`
}

// Create обрабатывает POST /clients.
func (h *ClientHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req clientRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), service.ClientInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Notes:       req.Notes,
	}, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// Get обрабатывает GET /clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	client, err := h.clients.GetClient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// List обрабатывает GET /clients.
func (h *ClientHandler) List(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	clients, err := h.clients.ListClients(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// Update обрабатывает PUT /clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Email       string  `json:"email"`
		Phone       *string `json:"phone"`
		CompanyName *string `json:"company_name"`
		Notes       *string `json:"notes"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), id, service.ClientInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// Delete обрабатывает DELETE /clients/:id.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.clients.DeleteClient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "клиент удалён"})
}
