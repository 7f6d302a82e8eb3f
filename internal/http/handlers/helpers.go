package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vsuitehq/gigster-backend/internal/http/handlers/common"
	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// respondServiceError переводит ошибку сервиса в HTTP ответ.
func respondServiceError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		common.RespondError(c, appErr.HTTPStatus, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, repository.ErrTimeLogNotFound),
		errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrProposalNotFound),
		errors.Is(err, repository.ErrInvoiceNotFound),
		errors.Is(err, repository.ErrPaymentNotFound),
		errors.Is(err, repository.ErrContractNotFound),
		errors.Is(err, repository.ErrNotificationNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		common.RespondNotFound(c, err.Error())
	case errors.Is(err, repository.ErrInvoiceNotDraft),
		errors.Is(err, repository.ErrContractNotDraft),
		errors.Is(err, repository.ErrContractBadTransition):
		common.RespondConflict(c, err.Error())
	default:
		// Сообщения сервисного слоя понятны клиенту и уходят как 400.
		// Всё, что похоже на сбой репозитория или БД, маскируется:
		// клиент получает общий 500, детали остаются в логе.
		if isInternalFailure(err) {
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}
			common.RespondInternalError(c, "внутренняя ошибка сервера")
			return
		}
		common.RespondError(c, http.StatusBadRequest, err.Error())
	}
}

// isInternalFailure распознаёт обёрнутые ошибки инфраструктуры по маркерам
// в тексте: такие сообщения никогда не предназначены клиенту.
func isInternalFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"repository:", "sql:", "pq:", "database", "connection", "timeout", "tx:"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
