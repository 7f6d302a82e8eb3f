package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository/common"
)

// ErrTaskNotFound возвращается, когда задача не найдена.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository отвечает за работу с задачами.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт экземпляр репозитория.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create создаёт новую задачу.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, project_id, assignee_id, status, priority, due_date, depends_on, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		task.Title, task.Description, task.ProjectID, task.AssigneeID,
		task.Status, task.Priority, task.DueDate, task.DependsOn, task.CreatedByID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("task repository: create %w", err)
	}

	return nil
}

// GetByID возвращает задачу по идентификатору.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return common.GetByID[models.Task](ctx, r.db, "tasks", id, ErrTaskNotFound)
}

// ListByProject возвращает все задачи проекта.
// Используется проверкой циклических зависимостей, поэтому без пагинации.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	query := `SELECT * FROM tasks WHERE project_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &tasks, query, projectID); err != nil {
		return nil, fmt.Errorf("task repository: list by project %w", err)
	}

	return tasks, nil
}

// List возвращает задачи с фильтрами по исполнителю и статусу.
func (r *TaskRepository) List(ctx context.Context, assigneeID *uuid.UUID, status string, limit, offset int) ([]models.Task, error) {
	query := `SELECT * FROM tasks WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if assigneeID != nil {
		query += fmt.Sprintf(" AND assignee_id = $%d", argIndex)
		args = append(args, *assigneeID)
		argIndex++
	}

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("task repository: list %w", err)
	}

	return tasks, nil
}

// Update обновляет задачу.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, assignee_id = $4, status = $5,
			priority = $6, due_date = $7, depends_on = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		task.ID, task.Title, task.Description, task.AssigneeID,
		task.Status, task.Priority, task.DueDate, task.DependsOn,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("task repository: update %w", err)
	}

	return nil
}

// Delete удаляет задачу.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("task repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("task repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
