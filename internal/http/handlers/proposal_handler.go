package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// ProposalHandler обслуживает маршруты коммерческих предложений,
// включая публичные эндпоинты для клиентов.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт новый хэндлер.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

type createProposalRequest struct {
	Title         string           `json:"title" binding:"required"`
	TemplateID    *uuid.UUID       `json:"template_id"`
	ProjectID     *uuid.UUID       `json:"project_id"`
	ClientName    string           `json:"client_name"`
	ClientEmail   string           `json:"client_email" binding:"required,email"`
	Content       string           `json:"content"`
	Variables     models.ValuesMap `json:"variables"`
	ExpiresInDays int              `json:"expires_in_days"`
}

// Create обрабатывает POST /proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req createProposalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.CreateProposal(c.Request.Context(), service.CreateProposalInput{
		Title:         req.Title,
		TemplateID:    req.TemplateID,
		ProjectID:     req.ProjectID,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		Content:       req.Content,
		Variables:     req.Variables,
		ExpiresInDays: req.ExpiresInDays,
	}, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Get обрабатывает GET /proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.GetProposal(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// List обрабатывает GET /proposals.
func (h *ProposalHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	status := c.Query("status")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	proposals, err := h.proposals.ListProposals(c.Request.Context(), userID, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// Update обрабатывает PUT /proposals/:id. Только для черновиков.
func (h *ProposalHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Title     string           `json:"title"`
		Content   string           `json:"content"`
		Variables models.ValuesMap `json:"variables"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.UpdateDraft(c.Request.Context(), id, service.UpdateProposalInput{
		Title:     req.Title,
		Content:   req.Content,
		Variables: req.Variables,
	}, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

type sendProposalRequest struct {
	ClientEmail *string `json:"client_email" binding:"omitempty,email"`
	Message     *string `json:"message"`
}

// Send обрабатывает POST /proposals/:id/send. Тело запроса необязательно:
// без него письмо уходит на сохранённый адрес клиента со стандартным текстом.
func (h *ProposalHandler) Send(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req sendProposalRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	proposal, err := h.proposals.SendProposal(c.Request.Context(), id, userID, service.SendProposalInput{
		ClientEmail: req.ClientEmail,
		Message:     req.Message,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal":  proposal,
		"share_url": h.proposals.ShareURL(proposal),
	})
}

type createRevisionRequest struct {
	RevisionNotes *string `json:"revision_notes"`
}

// CreateRevision обрабатывает POST /proposals/:id/create-revision.
func (h *ProposalHandler) CreateRevision(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req createRevisionRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	revision, err := h.proposals.CreateRevision(c.Request.Context(), id, userID, req.RevisionNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, revision)
}

// Delete обрабатывает DELETE /proposals/:id. Только для черновиков.
func (h *ProposalHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.proposals.DeleteProposal(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "черновик удалён"})
}

// ViewShared обрабатывает GET /shared/proposals/:link — публичный просмотр
// без авторизации. Первый просмотр фиксируется в статусе предложения.
func (h *ProposalHandler) ViewShared(c *gin.Context) {
	link := c.Param("link")
	if link == "" {
		common.RespondBadRequest(c, "ссылка обязательна")
		return
	}

	proposal, err := h.proposals.ViewByLink(c.Request.Context(), link)
	if err != nil {
		// Публичный эндпоинт не раскрывает причину
		common.RespondNotFound(c, "предложение не найдено")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":      proposal.Title,
		"content":    proposal.Content,
		"status":     proposal.Status,
		"expires_at": proposal.ExpiresAt,
		"version":    proposal.Version,
	})
}

// RespondShared обрабатывает POST /shared/proposals/:link/respond —
// публичный ответ клиента: accepted, rejected или revision_requested.
func (h *ProposalHandler) RespondShared(c *gin.Context) {
	link := c.Param("link")
	if link == "" {
		common.RespondBadRequest(c, "ссылка обязательна")
		return
	}

	var req struct {
		Response string  `json:"response" binding:"required"`
		Message  *string `json:"message"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposals.Respond(c.Request.Context(), link, req.Response, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       proposal.Status,
		"responded_at": proposal.RespondedAt,
	})
}
