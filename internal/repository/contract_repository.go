package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository/common"
)

var (
	// ErrContractNotFound возвращается, когда контракт не найден.
	ErrContractNotFound = errors.New("contract not found")
	// ErrContractNotDraft возвращается при попытке изменить контракт вне статуса draft.
	ErrContractNotDraft = errors.New("contract is not in draft status")
	// ErrContractBadTransition возвращается при недопустимом переходе статуса подписи.
	ErrContractBadTransition = errors.New("invalid contract status transition")
)

// ContractRepository отвечает за контракты.
type ContractRepository struct {
	db *sqlx.DB
}

// NewContractRepository создаёт экземпляр репозитория.
func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// NextContractNumber выдаёт следующий номер контракта из последовательности.
func (r *ContractRepository) NextContractNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval('contract_number_seq')`); err != nil {
		return "", fmt.Errorf("contract repository: next number %w", err)
	}
	return fmt.Sprintf("CTR-%06d", n), nil
}

// Create создаёт новый контракт.
func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	query := `
		INSERT INTO contracts (contract_number, title, client_id, project_id, content, line_items,
			total_amount, status, expiration_date, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		c.ContractNumber, c.Title, c.ClientID, c.ProjectID, c.Content, c.LineItems,
		c.TotalAmount, c.Status, c.ExpirationDate, c.CreatedByID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("contract repository: create %w", err)
	}

	return nil
}

// GetByID возвращает контракт по идентификатору.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return common.GetByID[models.Contract](ctx, r.db, "contracts", id, ErrContractNotFound)
}

// List возвращает контракты с опциональными фильтрами.
func (r *ContractRepository) List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Contract, error) {
	query := `SELECT * FROM contracts WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if clientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIndex)
		args = append(args, *clientID)
		argIndex++
	}

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var contracts []models.Contract
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, fmt.Errorf("contract repository: list %w", err)
	}

	return contracts, nil
}

// UpdateDraft обновляет контракт. Условие по статусу в WHERE запрещает
// правки после отправки на подпись.
func (r *ContractRepository) UpdateDraft(ctx context.Context, c *models.Contract) error {
	query := `
		UPDATE contracts
		SET title = $2, content = $3, line_items = $4, total_amount = $5,
			expiration_date = $6, updated_at = NOW()
		WHERE id = $1 AND status = $7
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		c.ID, c.Title, c.Content, c.LineItems, c.TotalAmount,
		c.ExpirationDate, models.ContractStatusDraft,
	).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrContractNotDraft
		}
		return fmt.Errorf("contract repository: update draft %w", err)
	}

	return nil
}

// MarkSent переводит контракт из draft в sent.
func (r *ContractRepository) MarkSent(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	query := `
		UPDATE contracts
		SET status = $2, sent_at = COALESCE(sent_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING *
	`

	if err := r.db.GetContext(ctx, &c, query, id, models.ContractStatusSent, models.ContractStatusDraft); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractNotDraft
		}
		return nil, fmt.Errorf("contract repository: mark sent %w", err)
	}

	return &c, nil
}

// Transition выполняет переход статуса подписи из from в to.
// Условие по текущему статусу в WHERE отсекает гонки двух параллельных подписей.
func (r *ContractRepository) Transition(ctx context.Context, id uuid.UUID, from, to string, at time.Time) (*models.Contract, error) {
	var c models.Contract
	query := `
		UPDATE contracts
		SET status = $3,
			signed_at = CASE WHEN $3 = $4 THEN $5 ELSE signed_at END,
			executed_at = CASE WHEN $3 = $6 THEN $7 ELSE executed_at END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING *
	`

	if err := r.db.GetContext(ctx, &c, query,
		id, from, to,
		models.ContractStatusFullySigned, at,
		models.ContractStatusExecuted, at,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractBadTransition
		}
		return nil, fmt.Errorf("contract repository: transition %w", err)
	}

	return &c, nil
}

// ListNeedsAttention возвращает контракты, требующие внимания менеджера:
// подписанные или исполненные со сроком, истекающим в ближайшие 30 дней,
// и все контракты в статусах ожидания подписи. Чтение без мутаций.
func (r *ContractRepository) ListNeedsAttention(ctx context.Context, now time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	query := `
		SELECT * FROM contracts
		WHERE (status = ANY($1)
			AND expiration_date IS NOT NULL
			AND expiration_date > $2
			AND expiration_date < $3)
			OR status = ANY($4)
		ORDER BY expiration_date NULLS LAST, created_at
	`

	signedStatuses := pq.StringArray{models.ContractStatusFullySigned, models.ContractStatusExecuted}
	pendingStatuses := pq.StringArray(models.ContractPendingSignatureStatuses)

	if err := r.db.SelectContext(ctx, &contracts, query,
		signedStatuses, now, now.Add(30*24*time.Hour), pendingStatuses); err != nil {
		return nil, fmt.Errorf("contract repository: list needs attention %w", err)
	}

	return contracts, nil
}

// Delete удаляет контракт. Разрешено только для черновиков.
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contracts WHERE id = $1 AND status = $2`, id, models.ContractStatusDraft)
	if err != nil {
		return fmt.Errorf("contract repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("contract repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrContractNotDraft
	}

	return nil
}
