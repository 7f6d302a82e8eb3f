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

// ErrTemplateNotFound возвращается, когда шаблон не найден.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository отвечает за шаблоны документов.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository создаёт экземпляр репозитория.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create создаёт новый шаблон.
func (r *TemplateRepository) Create(ctx context.Context, tpl *models.Template) error {
	query := `
		INSERT INTO templates (name, type, description, content, variables, is_system, is_public, tags, metadata, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	metadata := tpl.Metadata
	if metadata == nil {
		metadata = []byte("{}")
	}

	if err := r.db.QueryRowxContext(
		ctx, query,
		tpl.Name, tpl.Type, tpl.Description, tpl.Content, tpl.Variables,
		tpl.IsSystem, tpl.IsPublic, tpl.Tags, metadata, tpl.CreatedByID,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return fmt.Errorf("template repository: create %w", err)
	}

	return nil
}

// GetByID возвращает шаблон по идентификатору.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return common.GetByID[models.Template](ctx, r.db, "templates", id, ErrTemplateNotFound)
}

// List возвращает шаблоны, доступные пользователю: его собственные,
// публичные и системные. Фильтр по типу опционален.
func (r *TemplateRepository) List(ctx context.Context, userID uuid.UUID, templateType string, limit, offset int) ([]models.Template, error) {
	query := `SELECT * FROM templates WHERE (created_by_id = $1 OR is_public = TRUE OR is_system = TRUE)`
	args := []interface{}{userID}
	argIndex := 2

	if templateType != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, templateType)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var templates []models.Template
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("template repository: list %w", err)
	}

	return templates, nil
}

// Update обновляет шаблон.
func (r *TemplateRepository) Update(ctx context.Context, tpl *models.Template) error {
	query := `
		UPDATE templates
		SET name = $2, description = $3, content = $4, variables = $5,
			is_public = $6, tags = $7, metadata = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	metadata := tpl.Metadata
	if metadata == nil {
		metadata = []byte("{}")
	}

	if err := r.db.QueryRowxContext(
		ctx, query,
		tpl.ID, tpl.Name, tpl.Description, tpl.Content, tpl.Variables,
		tpl.IsPublic, tpl.Tags, metadata,
	).Scan(&tpl.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("template repository: update %w", err)
	}

	return nil
}

// Delete удаляет шаблон. Системные шаблоны удалить нельзя.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1 AND is_system = FALSE`, id)
	if err != nil {
		return fmt.Errorf("template repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("template repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}
