package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// mockTimeLogRepository хранит записи времени в памяти.
type mockTimeLogRepository struct {
	entries map[uuid.UUID]*models.TimeLog
}

func newMockTimeLogRepository() *mockTimeLogRepository {
	return &mockTimeLogRepository{entries: make(map[uuid.UUID]*models.TimeLog)}
}

func (m *mockTimeLogRepository) Create(ctx context.Context, entry *models.TimeLog) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockTimeLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeLog, error) {
	if entry, ok := m.entries[id]; ok {
		return entry, nil
	}
	return nil, repository.ErrTimeLogNotFound
}

func (m *mockTimeLogRepository) GetRunning(ctx context.Context, userID uuid.UUID) (*models.TimeLog, error) {
	for _, entry := range m.entries {
		if entry.UserID == userID && entry.EndedAt == nil {
			return entry, nil
		}
	}
	return nil, repository.ErrTimeLogNotFound
}

func (m *mockTimeLogRepository) Stop(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int) error {
	entry, ok := m.entries[id]
	if !ok || entry.EndedAt != nil {
		return repository.ErrTimeLogNotFound
	}
	entry.EndedAt = &endedAt
	entry.DurationMinutes = &durationMinutes
	return nil
}

func (m *mockTimeLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TimeLog, error) {
	var out []models.TimeLog
	for _, entry := range m.entries {
		if entry.UserID == userID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (m *mockTimeLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.entries, id)
	return nil
}

func TestTimeLogService_SingleRunningTimer(t *testing.T) {
	repo := newMockTimeLogRepository()
	service := NewTimeLogService(repo)
	ctx := context.Background()
	userID := uuid.New()

	first, err := service.StartTimer(ctx, userID, StartTimerInput{})
	assert.NoError(t, err)
	assert.Nil(t, first.EndedAt)

	// Второй таймер запустить нельзя
	_, err = service.StartTimer(ctx, userID, StartTimerInput{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже запущен")

	// У другого пользователя свой таймер
	_, err = service.StartTimer(ctx, uuid.New(), StartTimerInput{})
	assert.NoError(t, err)
}

func TestTimeLogService_StopComputesDuration(t *testing.T) {
	repo := newMockTimeLogRepository()
	service := NewTimeLogService(repo)
	ctx := context.Background()
	userID := uuid.New()

	started := time.Now().Add(-95 * time.Minute)
	service.now = func() time.Time { return started }

	entry, err := service.StartTimer(ctx, userID, StartTimerInput{})
	assert.NoError(t, err)
	assert.Equal(t, started, entry.StartedAt)

	service.now = time.Now
	stopped, err := service.StopTimer(ctx, userID)
	assert.NoError(t, err)
	assert.NotNil(t, stopped.EndedAt)
	assert.Equal(t, 95, *stopped.DurationMinutes)

	// Повторная остановка без запущенного таймера
	_, err = service.StopTimer(ctx, userID)
	assert.Error(t, err)
}

func TestTimeLogService_DeleteForeignEntryRejected(t *testing.T) {
	repo := newMockTimeLogRepository()
	service := NewTimeLogService(repo)
	ctx := context.Background()
	owner := uuid.New()

	entry, err := service.StartTimer(ctx, owner, StartTimerInput{})
	assert.NoError(t, err)

	err = service.DeleteEntry(ctx, entry.ID, uuid.New())
	assert.Error(t, err)

	err = service.DeleteEntry(ctx, entry.ID, owner)
	assert.NoError(t, err)
}
