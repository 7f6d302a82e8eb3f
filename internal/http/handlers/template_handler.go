package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// TemplateHandler обслуживает маршруты шаблонов документов.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler создаёт новый хэндлер.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type templateRequest struct {
	Name        string            `json:"name" binding:"required"`
	Type        string            `json:"type" binding:"required"`
	Description *string           `json:"description"`
	Content     *string           `json:"content"`
	Variables   []models.FieldDef `json:"variables"`
	IsPublic    bool              `json:"is_public"`
	Tags        []string          `json:"tags"`
	Metadata    json.RawMessage   `json:"metadata"`
}

// Create обрабатывает POST /templates.
func (h *TemplateHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req templateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tpl := &models.Template{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Content:     req.Content,
		Variables:   req.Variables,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		CreatedByID: userID,
	}

	created, err := h.templates.CreateTemplate(c.Request.Context(), tpl)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get обрабатывает GET /templates/:id.
func (h *TemplateHandler) Get(c *gin.Context) {
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

	tpl, err := h.templates.GetTemplate(c.Request.Context(), id, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

// List обрабатывает GET /templates.
func (h *TemplateHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	templateType := c.Query("type")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	templates, err := h.templates.ListTemplates(c.Request.Context(), userID, templateType, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// Update обрабатывает PUT /templates/:id.
func (h *TemplateHandler) Update(c *gin.Context) {
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

	var req templateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tpl := &models.Template{
		ID:          id,
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Content:     req.Content,
		Variables:   req.Variables,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	}

	updated, err := h.templates.UpdateTemplate(c.Request.Context(), tpl, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete обрабатывает DELETE /templates/:id.
func (h *TemplateHandler) Delete(c *gin.Context) {
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

	if err := h.templates.DeleteTemplate(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "шаблон удалён"})
}

// Preview обрабатывает POST /templates/:id/preview.
func (h *TemplateHandler) Preview(c *gin.Context) {
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
		Title  string           `json:"title"`
		Values models.ValuesMap `json:"values"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	content, err := h.templates.PreviewTemplate(c.Request.Context(), id, userID, req.Title, req.Values)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}

// Draft обрабатывает POST /templates/draft: генерация черновика через AI.
func (h *TemplateHandler) Draft(c *gin.Context) {
	var req struct {
		Type        string `json:"type" binding:"required"`
		Description string `json:"description" binding:"required"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	content, err := h.templates.DraftTemplateContent(c.Request.Context(), req.Type, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}
