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

// ErrProposalNotFound возвращается, когда предложение не найдено.
var ErrProposalNotFound = errors.New("proposal not found")

// ProposalRepository отвечает за коммерческие предложения.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create создаёт новое предложение (или ревизию существующего).
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal) error {
	query := `
		INSERT INTO proposals (title, template_id, project_id, client_id, client_name, client_email,
			content, variables, status, expires_at, version, parent_proposal_id, revision_notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		p.Title, p.TemplateID, p.ProjectID, p.ClientID, p.ClientName, p.ClientEmail,
		p.Content, p.Variables, p.Status, p.ExpiresAt, p.Version, p.ParentProposalID, p.RevisionNotes, p.CreatedByID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("proposal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает предложение по идентификатору.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetByID[models.Proposal](ctx, r.db, "proposals", id, ErrProposalNotFound)
}

// GetByShareableLink возвращает предложение по публичной ссылке.
func (r *ProposalRepository) GetByShareableLink(ctx context.Context, link string) (*models.Proposal, error) {
	return common.GetByField[models.Proposal](ctx, r.db, "proposals", "shareable_link", link, ErrProposalNotFound)
}

// UpdateDraft обновляет контент черновика. Условие по статусу гарантирует,
// что отправленное предложение не изменится даже при гонке с отправкой.
func (r *ProposalRepository) UpdateDraft(ctx context.Context, p *models.Proposal) error {
	query := `
		UPDATE proposals
		SET title = $2, content = $3, variables = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.ID, p.Title, p.Content, p.Variables).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProposalNotFound
	}
	if err != nil {
		return fmt.Errorf("proposal repository: update draft %w", err)
	}

	return nil
}

// List возвращает предложения автора с опциональным фильтром по статусу.
func (r *ProposalRepository) List(ctx context.Context, createdByID uuid.UUID, status string, limit, offset int) ([]models.Proposal, error) {
	query := `SELECT * FROM proposals WHERE created_by_id = $1`
	args := []interface{}{createdByID}
	argIndex := 2

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var proposals []models.Proposal
	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("proposal repository: list %w", err)
	}

	return proposals, nil
}

// MarkSent переводит предложение в статус sent и выдаёт публичную ссылку.
// COALESCE гарантирует, что однажды выданная ссылка не меняется при повторной
// отправке. CASE не даёт повторной отправке откатить статус из viewed или
// терминального состояния обратно в sent.
func (r *ProposalRepository) MarkSent(ctx context.Context, id uuid.UUID, link string) (*models.Proposal, error) {
	var p models.Proposal
	query := `
		UPDATE proposals
		SET status = CASE WHEN status IN ($3, $4) THEN $4 ELSE status END,
			sent_at = COALESCE(sent_at, NOW()),
			shareable_link = COALESCE(shareable_link, $2),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`

	if err := r.db.GetContext(ctx, &p, query, id, link, models.ProposalStatusDraft, models.ProposalStatusSent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: mark sent %w", err)
	}

	return &p, nil
}

// MarkViewed фиксирует первый просмотр по публичной ссылке.
// Условие в WHERE делает переход идемпотентным: повторные просмотры
// не трогают viewed_at и не откатывают статус из более поздних состояний.
func (r *ProposalRepository) MarkViewed(ctx context.Context, link string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE proposals
		SET viewed_at = NOW(), status = $2, updated_at = NOW()
		WHERE shareable_link = $1 AND viewed_at IS NULL AND status = $3
	`, link, models.ProposalStatusViewed, models.ProposalStatusSent)
	if err != nil {
		return fmt.Errorf("proposal repository: mark viewed %w", err)
	}

	return nil
}

// Respond записывает ответ клиента. Переход выполняется только из
// неконечных статусов; конфликтующий повторный ответ вернёт ErrProposalNotFound.
func (r *ProposalRepository) Respond(ctx context.Context, link, response string, message *string) (*models.Proposal, error) {
	var p models.Proposal
	query := `
		UPDATE proposals
		SET status = $2,
			responded_at = NOW(),
			accepted_at = CASE WHEN $2 = $3 THEN NOW() ELSE accepted_at END,
			response_message = $4,
			updated_at = NOW()
		WHERE shareable_link = $1
			AND status NOT IN ($3, $5, $6)
		RETURNING *
	`

	if err := r.db.GetContext(ctx, &p, query,
		link, response,
		models.ProposalStatusAccepted, message,
		models.ProposalStatusRejected, models.ProposalStatusRevisionRequested,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: respond %w", err)
	}

	return &p, nil
}

// Delete удаляет предложение. Разрешено только для черновиков.
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM proposals WHERE id = $1 AND status = $2`, id, models.ProposalStatusDraft)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("proposal repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrProposalNotFound
	}

	return nil
}
