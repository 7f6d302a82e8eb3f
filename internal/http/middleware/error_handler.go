package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			// Логируем ошибку
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			statusCode, message := mapError(err.Err)
			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}

// mapError подбирает статус код и сообщение для известных типов ошибок.
func mapError(err error) (int, string) {
	// Ошибки приложения несут статус код с собой
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.Message
	}

	// Сентинельные ошибки репозиториев
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "пользователь не найден"
	case errors.Is(err, repository.ErrClientNotFound):
		return http.StatusNotFound, "клиент не найден"
	case errors.Is(err, repository.ErrProjectNotFound):
		return http.StatusNotFound, "проект не найден"
	case errors.Is(err, repository.ErrTaskNotFound):
		return http.StatusNotFound, "задача не найдена"
	case errors.Is(err, repository.ErrTimeLogNotFound):
		return http.StatusNotFound, "запись времени не найдена"
	case errors.Is(err, repository.ErrTemplateNotFound):
		return http.StatusNotFound, "шаблон не найден"
	case errors.Is(err, repository.ErrProposalNotFound):
		return http.StatusNotFound, "предложение не найдено"
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return http.StatusNotFound, "счёт не найден"
	case errors.Is(err, repository.ErrPaymentNotFound):
		return http.StatusNotFound, "платёж не найден"
	case errors.Is(err, repository.ErrContractNotFound):
		return http.StatusNotFound, "контракт не найден"
	case errors.Is(err, repository.ErrNotificationNotFound):
		return http.StatusNotFound, "уведомление не найдено"
	case errors.Is(err, repository.ErrInvoiceNotDraft),
		errors.Is(err, repository.ErrContractNotDraft):
		return http.StatusConflict, "документ можно редактировать только в статусе draft"
	case errors.Is(err, repository.ErrContractBadTransition):
		return http.StatusConflict, "недопустимый переход статуса контракта"
	}

	// Если ошибка содержит понятное сообщение, используем его
	// Но только если это не внутренняя ошибка
	if errStr := err.Error(); errStr != "" && !containsInternalKeywords(errStr) {
		statusCode := http.StatusInternalServerError
		if contains(errStr, "неверный") || contains(errStr, "невалид") || contains(errStr, "должен") || contains(errStr, "обязател") {
			statusCode = http.StatusBadRequest
		} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
			statusCode = http.StatusForbidden
		}
		if statusCode != http.StatusInternalServerError {
			return statusCode, errStr
		}
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
