package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/render"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// PaymentApplier описывает транзакционное применение платежа к счёту.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error)
}

// PaymentService содержит бизнес-логику приёма платежей.
// Запись платежа и обновление баланса счёта выполняются одной транзакцией.
type PaymentService struct {
	invoices PaymentApplier
	notifier *NotificationService
	now      func() time.Time
}

// NewPaymentService создаёт новый сервис платежей.
func NewPaymentService(invoices PaymentApplier, notifier *NotificationService) *PaymentService {
	return &PaymentService{
		invoices: invoices,
		notifier: notifier,
		now:      time.Now,
	}
}

// PaymentInput описывает входные данные платежа.
type PaymentInput struct {
	InvoiceID   *uuid.UUID
	ClientID    uuid.UUID
	Amount      float64
	PaymentDate *time.Time
	Notes       *string
}

// RecordPayment фиксирует платёж. Если платёж привязан к счёту, баланс счёта
// обновляется в той же транзакции; при полном погашении счёт переходит в paid.
func (s *PaymentService) RecordPayment(ctx context.Context, in PaymentInput, createdBy uuid.UUID) (*models.Payment, *models.Invoice, error) {
	if in.Amount <= 0 {
		return nil, nil, fmt.Errorf("payment service: сумма платежа должна быть положительной")
	}
	if err := validation.ValidateAmount("сумма платежа", in.Amount); err != nil {
		return nil, nil, fmt.Errorf("payment service: %w", err)
	}

	paymentDate := s.now()
	if in.PaymentDate != nil {
		paymentDate = *in.PaymentDate
	}

	payment := &models.Payment{
		InvoiceID:   in.InvoiceID,
		ClientID:    in.ClientID,
		Amount:      in.Amount,
		PaymentDate: paymentDate,
		Notes:       in.Notes,
		CreatedByID: createdBy,
	}

	invoice, err := s.invoices.ApplyPayment(ctx, payment)
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil && invoice != nil {
		event := "invoice.payment_received"
		if invoice.Status == models.InvoiceStatusPaid {
			event = "invoice.paid"
		}
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID: invoice.CreatedByID,
			Event:  event,
			Data: map[string]interface{}{
				"invoice_number": invoice.InvoiceNumber,
				"amount":         render.FormatMoney(payment.Amount),
				"balance_due":    render.FormatMoney(invoice.BalanceDue),
			},
		})
	}

	return payment, invoice, nil
}
