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

// TaskHandler обслуживает маршруты задач.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler создаёт новый хэндлер.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type taskRequest struct {
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	ProjectID   *uuid.UUID  `json:"project_id"`
	AssigneeID  *uuid.UUID  `json:"assignee_id"`
	Status      string      `json:"status"`
	Priority    *string     `json:"priority"`
	DueDate     *time.Time  `json:"due_date"`
	DependsOn   []uuid.UUID `json:"depends_on"`
}

// Create обрабатывает POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req taskRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		DependsOn:   req.DependsOn,
		CreatedByID: userID,
	}

	created, err := h.tasks.CreateTask(c.Request.Context(), task)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get обрабатывает GET /tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// List обрабатывает GET /tasks.
func (h *TaskHandler) List(c *gin.Context) {
	assigneeID, err := common.ParseUUIDQuery(c, "assignee_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	status := c.Query("status")
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	tasks, err := h.tasks.ListTasks(c.Request.Context(), assigneeID, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Update обрабатывает PUT /tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	existing, err := h.tasks.GetTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req taskRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Title != "" {
		existing.Title = req.Title
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.ProjectID != nil {
		existing.ProjectID = req.ProjectID
	}
	if req.AssigneeID != nil {
		existing.AssigneeID = req.AssigneeID
	}
	if req.Status != "" {
		existing.Status = req.Status
	}
	if req.Priority != nil {
		existing.Priority = req.Priority
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.DependsOn != nil {
		existing.DependsOn = req.DependsOn
	}

	updated, err := h.tasks.UpdateTask(c.Request.Context(), existing)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete обрабатывает DELETE /tasks/:id. Только для администраторов.
func (h *TaskHandler) Delete(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), id, role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "задача удалена"})
}
