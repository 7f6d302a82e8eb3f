package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// TimeLogHandler обслуживает маршруты учёта времени.
type TimeLogHandler struct {
	timelogs *service.TimeLogService
}

// NewTimeLogHandler создаёт новый хэндлер.
func NewTimeLogHandler(timelogs *service.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{timelogs: timelogs}
}

type startTimerRequest struct {
	TaskID      *uuid.UUID `json:"task_id"`
	ProjectID   *uuid.UUID `json:"project_id"`
	Description *string    `json:"description"`
}

// Start обрабатывает POST /timelogs/start.
func (h *TimeLogHandler) Start(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req startTimerRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	entry, err := h.timelogs.StartTimer(c.Request.Context(), userID, service.StartTimerInput{
		TaskID:      req.TaskID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Stop обрабатывает POST /timelogs/stop.
func (h *TimeLogHandler) Stop(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	entry, err := h.timelogs.StopTimer(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Running обрабатывает GET /timelogs/running.
func (h *TimeLogHandler) Running(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	entry, err := h.timelogs.GetRunning(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// List обрабатывает GET /timelogs.
func (h *TimeLogHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	entries, err := h.timelogs.ListEntries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Delete обрабатывает DELETE /timelogs/:id.
func (h *TimeLogHandler) Delete(c *gin.Context) {
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

	if err := h.timelogs.DeleteEntry(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "запись удалена"})
}
