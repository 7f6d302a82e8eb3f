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

// ErrClientNotFound возвращается, когда клиент не найден.
var ErrClientNotFound = errors.New("client not found")

// ClientRepository отвечает за CRM-карточки клиентов.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository создаёт экземпляр репозитория.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create создаёт нового клиента.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (name, email, phone, company_name, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		client.Name, client.Email, client.Phone, client.CompanyName, client.Notes, client.CreatedByID,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt); err != nil {
		return fmt.Errorf("client repository: create %w", err)
	}

	return nil
}

// GetByID возвращает клиента по идентификатору.
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return common.GetByID[models.Client](ctx, r.db, "clients", id, ErrClientNotFound)
}

// GetByEmail возвращает клиента по точному совпадению email.
// Сопоставление чувствительно к регистру: автосоздание клиента при создании
// предложения переиспользует карточку только при буквальном совпадении.
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := r.db.GetContext(ctx, &client, `SELECT * FROM clients WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("client repository: get by email %w", err)
	}

	return &client, nil
}

// List возвращает всех клиентов с пагинацией.
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]models.Client, error) {
	var clients []models.Client
	query := `SELECT * FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &clients, query, limit, offset); err != nil {
		return nil, fmt.Errorf("client repository: list %w", err)
	}

	return clients, nil
}

// Update обновляет карточку клиента.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, company_name = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		client.ID, client.Name, client.Email, client.Phone, client.CompanyName, client.Notes,
	).Scan(&client.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClientNotFound
		}
		return fmt.Errorf("client repository: update %w", err)
	}

	return nil
}

// Delete удаляет клиента.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("client repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("client repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}
