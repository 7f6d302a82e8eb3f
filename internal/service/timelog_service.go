package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// TimeLogRepository описывает взаимодействие сервиса с хранилищем записей времени.
type TimeLogRepository interface {
	Create(ctx context.Context, entry *models.TimeLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeLog, error)
	GetRunning(ctx context.Context, userID uuid.UUID) (*models.TimeLog, error)
	Stop(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TimeLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimeLogService содержит бизнес-логику учёта времени.
// У пользователя может быть не более одного запущенного таймера.
type TimeLogService struct {
	repo TimeLogRepository
	now  func() time.Time
}

// NewTimeLogService создаёт новый сервис учёта времени.
func NewTimeLogService(repo TimeLogRepository) *TimeLogService {
	return &TimeLogService{repo: repo, now: time.Now}
}

// StartTimerInput описывает параметры запускаемого таймера.
type StartTimerInput struct {
	TaskID      *uuid.UUID
	ProjectID   *uuid.UUID
	Description *string
}

// StartTimer запускает таймер. Если таймер уже запущен, возвращает ошибку.
func (s *TimeLogService) StartTimer(ctx context.Context, userID uuid.UUID, in StartTimerInput) (*models.TimeLog, error) {
	if _, err := s.repo.GetRunning(ctx, userID); err == nil {
		return nil, fmt.Errorf("timelog service: таймер уже запущен, сначала остановите его")
	} else if !errors.Is(err, repository.ErrTimeLogNotFound) {
		return nil, err
	}

	entry := &models.TimeLog{
		UserID:      userID,
		TaskID:      in.TaskID,
		ProjectID:   in.ProjectID,
		Description: in.Description,
		StartedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// StopTimer останавливает запущенный таймер и фиксирует длительность.
func (s *TimeLogService) StopTimer(ctx context.Context, userID uuid.UUID) (*models.TimeLog, error) {
	entry, err := s.repo.GetRunning(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTimeLogNotFound) {
			return nil, fmt.Errorf("timelog service: нет запущенного таймера")
		}
		return nil, err
	}

	endedAt := s.now()
	minutes := int(endedAt.Sub(entry.StartedAt).Round(time.Minute) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	if err := s.repo.Stop(ctx, entry.ID, endedAt, minutes); err != nil {
		return nil, err
	}

	entry.EndedAt = &endedAt
	entry.DurationMinutes = &minutes
	return entry, nil
}

// GetRunning возвращает текущий запущенный таймер пользователя, если он есть.
func (s *TimeLogService) GetRunning(ctx context.Context, userID uuid.UUID) (*models.TimeLog, error) {
	return s.repo.GetRunning(ctx, userID)
}

// ListEntries возвращает записи времени пользователя.
func (s *TimeLogService) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TimeLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// DeleteEntry удаляет запись времени. Запись можно удалить только её владельцу.
func (s *TimeLogService) DeleteEntry(ctx context.Context, id, userID uuid.UUID) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return fmt.Errorf("timelog service: у вас нет прав на эту запись")
	}
	return s.repo.Delete(ctx, id)
}
