package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// ProjectHandler обслуживает маршруты проектов.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler создаёт новый хэндлер.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	ClientID    *uuid.UUID `json:"client_id"`
	Status      string     `json:"status"`
}

// Create обрабатывает POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req projectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      req.Status,
	}, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Get обрабатывает GET /projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// List обрабатывает GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
	clientID, err := common.ParseUUIDQuery(c, "client_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	projects, err := h.projects.ListProjects(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// Update обрабатывает PUT /projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req projectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), id, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete обрабатывает DELETE /projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "проект удалён"})
}
