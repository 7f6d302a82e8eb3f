package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository/common"
)

// ErrTimeLogNotFound возвращается, когда запись учёта времени не найдена.
var ErrTimeLogNotFound = errors.New("time log not found")

// TimeLogRepository отвечает за записи учёта времени.
type TimeLogRepository struct {
	db *sqlx.DB
}

// NewTimeLogRepository создаёт экземпляр репозитория.
func NewTimeLogRepository(db *sqlx.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

// Create создаёт новую запись учёта времени.
func (r *TimeLogRepository) Create(ctx context.Context, entry *models.TimeLog) error {
	query := `
		INSERT INTO time_logs (user_id, task_id, project_id, description, started_at, ended_at, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		entry.UserID, entry.TaskID, entry.ProjectID, entry.Description,
		entry.StartedAt, entry.EndedAt, entry.DurationMinutes,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("time log repository: create %w", err)
	}

	return nil
}

// GetByID возвращает запись по идентификатору.
func (r *TimeLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeLog, error) {
	return common.GetByID[models.TimeLog](ctx, r.db, "time_logs", id, ErrTimeLogNotFound)
}

// GetRunning возвращает запущенный таймер пользователя, если он есть.
func (r *TimeLogRepository) GetRunning(ctx context.Context, userID uuid.UUID) (*models.TimeLog, error) {
	var entry models.TimeLog
	query := `SELECT * FROM time_logs WHERE user_id = $1 AND ended_at IS NULL ORDER BY started_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &entry, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeLogNotFound
		}
		return nil, fmt.Errorf("time log repository: get running %w", err)
	}

	return &entry, nil
}

// Stop завершает запущенный таймер и фиксирует длительность в минутах.
func (r *TimeLogRepository) Stop(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE time_logs SET ended_at = $2, duration_minutes = $3
		WHERE id = $1 AND ended_at IS NULL
	`, id, endedAt, durationMinutes)
	if err != nil {
		return fmt.Errorf("time log repository: stop %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("time log repository: stop rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrTimeLogNotFound
	}

	return nil
}

// ListByUser возвращает записи пользователя с пагинацией.
func (r *TimeLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TimeLog, error) {
	var entries []models.TimeLog
	query := `SELECT * FROM time_logs WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("time log repository: list by user %w", err)
	}

	return entries, nil
}

// Delete удаляет запись учёта времени.
func (r *TimeLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("time log repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("time log repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrTimeLogNotFound
	}

	return nil
}
