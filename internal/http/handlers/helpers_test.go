package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/proposals", nil)
	return c, rec
}

func TestRespondServiceError_RepositoryFailureMasked(t *testing.T) {
	c, rec := newTestContext(t)

	wrapped := fmt.Errorf("proposal repository: list pq: connection refused")
	respondServiceError(c, wrapped)

	// Детали сбоя БД не доходят до клиента.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "внутренняя ошибка сервера")
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.NotContains(t, rec.Body.String(), "repository")
}

func TestRespondServiceError_ValidationMessagePassesThrough(t *testing.T) {
	c, rec := newTestContext(t)

	respondServiceError(c, fmt.Errorf("payment service: сумма платежа должна быть положительной"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "сумма платежа")
}

func TestRespondServiceError_SentinelAndAppError(t *testing.T) {
	c, rec := newTestContext(t)
	respondServiceError(c, fmt.Errorf("get: %w", repository.ErrInvoiceNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c2, rec2 := newTestContext(t)
	respondServiceError(c2, apperror.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec2.Code)

	c3, rec3 := newTestContext(t)
	respondServiceError(c3, fmt.Errorf("update: %w", repository.ErrInvoiceNotDraft))
	assert.Equal(t, http.StatusConflict, rec3.Code)
}
