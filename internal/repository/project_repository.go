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

// ErrProjectNotFound возвращается, когда проект не найден.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository отвечает за работу с проектами.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт экземпляр репозитория.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create создаёт новый проект.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (name, description, client_id, status, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		project.Name, project.Description, project.ClientID, project.Status, project.CreatedByID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("project repository: create %w", err)
	}

	return nil
}

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return common.GetByID[models.Project](ctx, r.db, "projects", id, ErrProjectNotFound)
}

// List возвращает проекты, опционально фильтруя по клиенту.
func (r *ProjectRepository) List(ctx context.Context, clientID *uuid.UUID, limit, offset int) ([]models.Project, error) {
	query := `SELECT * FROM projects`
	args := []interface{}{}

	if clientID != nil {
		query += ` WHERE client_id = $1`
		args = append(args, *clientID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}

	return projects, nil
}

// Update обновляет проект.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, client_id = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		project.ID, project.Name, project.Description, project.ClientID, project.Status,
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update %w", err)
	}

	return nil
}

// Delete удаляет проект.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("project repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
