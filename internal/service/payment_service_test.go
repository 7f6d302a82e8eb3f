package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vsuitehq/gigster-backend/internal/models"
)

type mockPaymentApplier struct {
	mock.Mock
}

func (m *mockPaymentApplier) ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// mockNotificationStore хранит уведомления в памяти.
type mockNotificationStore struct {
	created []*models.Notification
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	for _, n := range m.created {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (m *mockNotificationStore) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (m *mockNotificationStore) MarkAsRead(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockNotificationStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockNotificationStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(m.created), nil
}

func TestPaymentService_FullPaymentMarksInvoicePaid(t *testing.T) {
	applier := new(mockPaymentApplier)
	store := &mockNotificationStore{}
	notifier := NewNotificationService(store, nil, nil)
	service := NewPaymentService(applier, notifier)

	invoiceID := uuid.New()
	ownerID := uuid.New()
	paid := &models.Invoice{
		ID:            invoiceID,
		InvoiceNumber: "INV-000010",
		Status:        models.InvoiceStatusPaid,
		TotalAmount:   500,
		AmountPaid:    500,
		BalanceDue:    0,
		CreatedByID:   ownerID,
	}

	applier.On("ApplyPayment", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(paid, nil)

	payment, invoice, err := service.RecordPayment(context.Background(), PaymentInput{
		InvoiceID: &invoiceID,
		ClientID:  uuid.New(),
		Amount:    500,
	}, ownerID)

	assert.NoError(t, err)
	assert.Equal(t, 500.0, payment.Amount)
	assert.Equal(t, models.InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, 0.0, invoice.BalanceDue)
	// Уведомление о полной оплате создано ровно одно
	assert.Len(t, store.created, 1)
	assert.Equal(t, ownerID, store.created[0].UserID)
	assert.Contains(t, string(store.created[0].Payload), "invoice.paid")
}

func TestPaymentService_PartialPaymentKeepsStatus(t *testing.T) {
	applier := new(mockPaymentApplier)
	store := &mockNotificationStore{}
	service := NewPaymentService(applier, NewNotificationService(store, nil, nil))

	invoiceID := uuid.New()
	partial := &models.Invoice{
		ID:            invoiceID,
		InvoiceNumber: "INV-000011",
		Status:        models.InvoiceStatusSent,
		TotalAmount:   500,
		AmountPaid:    200,
		BalanceDue:    300,
		CreatedByID:   uuid.New(),
	}

	applier.On("ApplyPayment", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(partial, nil)

	_, invoice, err := service.RecordPayment(context.Background(), PaymentInput{
		InvoiceID: &invoiceID,
		ClientID:  uuid.New(),
		Amount:    200,
	}, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, invoice.Status)
	assert.Equal(t, 300.0, invoice.BalanceDue)
	assert.Contains(t, string(store.created[0].Payload), "invoice.payment_received")
}

func TestPaymentService_NonPositiveAmountRejected(t *testing.T) {
	applier := new(mockPaymentApplier)
	service := NewPaymentService(applier, nil)

	_, _, err := service.RecordPayment(context.Background(), PaymentInput{
		ClientID: uuid.New(),
		Amount:   0,
	}, uuid.New())

	assert.Error(t, err)
	applier.AssertNotCalled(t, "ApplyPayment", mock.Anything, mock.Anything)
}
