package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// DashboardHandler обслуживает сводку рабочего стола.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler создаёт новый хэндлер.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary обрабатывает GET /dashboard.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	summary, err := h.dashboard.Summary(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
