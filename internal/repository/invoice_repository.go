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

var (
	// ErrInvoiceNotFound возвращается, когда счёт не найден.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrInvoiceNotDraft возвращается при попытке изменить счёт вне статуса draft.
	ErrInvoiceNotDraft = errors.New("invoice is not in draft status")
	// ErrPaymentNotFound возвращается, когда платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
)

// InvoiceRepository отвечает за счета и платежи по ним.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository создаёт экземпляр репозитория.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// NextInvoiceNumber выдаёт следующий номер счёта из последовательности.
func (r *InvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval('invoice_number_seq')`); err != nil {
		return "", fmt.Errorf("invoice repository: next number %w", err)
	}
	return fmt.Sprintf("INV-%06d", n), nil
}

// Create создаёт новый счёт.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_number, client_id, project_id, line_items, subtotal, tax_rate,
			tax_amount, discount_amount, total_amount, amount_paid, balance_due, status, due_date, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		inv.InvoiceNumber, inv.ClientID, inv.ProjectID, inv.LineItems, inv.Subtotal, inv.TaxRate,
		inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount, inv.AmountPaid, inv.BalanceDue,
		inv.Status, inv.DueDate, inv.Notes, inv.CreatedByID,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return fmt.Errorf("invoice repository: create %w", err)
	}

	return nil
}

// GetByID возвращает счёт по идентификатору.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return common.GetByID[models.Invoice](ctx, r.db, "invoices", id, ErrInvoiceNotFound)
}

// List возвращает счета с опциональными фильтрами по клиенту и статусу.
func (r *InvoiceRepository) List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Invoice, error) {
	query := `SELECT * FROM invoices WHERE 1=1`
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

	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, fmt.Errorf("invoice repository: list %w", err)
	}

	return invoices, nil
}

// UpdateDraft обновляет позиции и суммы счёта. Условие по статусу в WHERE
// гарантирует, что отправленный счёт изменить нельзя.
func (r *InvoiceRepository) UpdateDraft(ctx context.Context, inv *models.Invoice) error {
	query := `
		UPDATE invoices
		SET line_items = $2, subtotal = $3, tax_rate = $4, tax_amount = $5,
			discount_amount = $6, total_amount = $7, balance_due = $8,
			due_date = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND status = $11
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		inv.ID, inv.LineItems, inv.Subtotal, inv.TaxRate, inv.TaxAmount,
		inv.DiscountAmount, inv.TotalAmount, inv.BalanceDue,
		inv.DueDate, inv.Notes, models.InvoiceStatusDraft,
	).Scan(&inv.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvoiceNotDraft
		}
		return fmt.Errorf("invoice repository: update draft %w", err)
	}

	return nil
}

// MarkSent переводит счёт из draft в sent. Повторная отправка уже
// отправленного счёта разрешена: это путь ретрая доставки письма,
// статус и первый sent_at при этом не меняются.
func (r *InvoiceRepository) MarkSent(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	query := `
		UPDATE invoices
		SET status = $2, sent_at = COALESCE(sent_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $2)
		RETURNING *
	`

	if err := r.db.GetContext(ctx, &inv, query, id, models.InvoiceStatusSent, models.InvoiceStatusDraft); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotDraft
		}
		return nil, fmt.Errorf("invoice repository: mark sent %w", err)
	}

	return &inv, nil
}

// SweepOverdue переводит отправленные счета с прошедшим сроком оплаты в overdue
// и возвращает только что переведённые. Условие status = 'sent' в WHERE
// делает перевод однократным: повторный проход ничего не вернёт.
func (r *InvoiceRepository) SweepOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	var flipped []models.Invoice
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date < $3
		RETURNING *
	`

	if err := r.db.SelectContext(ctx, &flipped, query,
		models.InvoiceStatusOverdue, models.InvoiceStatusSent, now); err != nil {
		return nil, fmt.Errorf("invoice repository: sweep overdue %w", err)
	}

	return flipped, nil
}

// ListOverdue возвращает все просроченные счета.
func (r *InvoiceRepository) ListOverdue(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	query := `SELECT * FROM invoices WHERE status = $1 ORDER BY due_date`
	if err := r.db.SelectContext(ctx, &invoices, query, models.InvoiceStatusOverdue); err != nil {
		return nil, fmt.Errorf("invoice repository: list overdue %w", err)
	}

	return invoices, nil
}

// ApplyPayment создаёт платёж и обновляет баланс счёта одной транзакцией.
// Счёт блокируется через FOR UPDATE; при полном погашении статус становится paid.
func (r *InvoiceRepository) ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	var updated *models.Invoice

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO payments (invoice_id, client_id, amount, payment_date, notes, created_by_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, payment.InvoiceID, payment.ClientID, payment.Amount,
			payment.PaymentDate, payment.Notes, payment.CreatedByID,
		).Scan(&payment.ID, &payment.CreatedAt); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		// Платёж без привязки к счёту баланс не трогает.
		if payment.InvoiceID == nil {
			return nil
		}

		var inv models.Invoice
		if err := tx.GetContext(ctx, &inv, `SELECT * FROM invoices WHERE id = $1 FOR UPDATE`, *payment.InvoiceID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvoiceNotFound
			}
			return fmt.Errorf("lock invoice: %w", err)
		}

		inv.AmountPaid = models.Round2(inv.AmountPaid + payment.Amount)
		inv.BalanceDue = models.Round2(inv.TotalAmount - inv.AmountPaid)

		status := inv.Status
		var paidAt interface{}
		if inv.BalanceDue <= 0 {
			status = models.InvoiceStatusPaid
			paidAt = payment.PaymentDate
		}

		if err := tx.GetContext(ctx, &inv, `
			UPDATE invoices
			SET amount_paid = $2, balance_due = $3, status = $4,
				paid_at = COALESCE(paid_at, $5), updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, inv.ID, inv.AmountPaid, inv.BalanceDue, status, paidAt); err != nil {
			return fmt.Errorf("update invoice balance: %w", err)
		}

		updated = &inv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invoice repository: apply payment %w", err)
	}

	return updated, nil
}

// ListPayments возвращает платежи по счёту.
func (r *InvoiceRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	query := `SELECT * FROM payments WHERE invoice_id = $1 ORDER BY payment_date DESC`
	if err := r.db.SelectContext(ctx, &payments, query, invoiceID); err != nil {
		return nil, fmt.Errorf("invoice repository: list payments %w", err)
	}

	return payments, nil
}

// Delete удаляет счёт. Разрешено только для черновиков.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invoices WHERE id = $1 AND status = $2`, id, models.InvoiceStatusDraft)
	if err != nil {
		return fmt.Errorf("invoice repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invoice repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrInvoiceNotDraft
	}

	return nil
}
