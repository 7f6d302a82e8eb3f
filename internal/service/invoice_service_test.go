package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
)

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) NextInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	args := m.Called(ctx, inv)
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Invoice, error) {
	args := m.Called(ctx, clientID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) UpdateDraft(ctx context.Context, inv *models.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockInvoiceRepo) MarkSent(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListOverdue(ctx context.Context) ([]models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockClientLoader struct {
	mock.Mock
}

func (m *mockClientLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func TestInvoiceService_CreateRecalculatesTotals(t *testing.T) {
	repo := new(mockInvoiceRepo)
	clients := new(mockClientLoader)
	service := NewInvoiceService(repo, clients, nil, nil, nil)

	clientID := uuid.New()
	clients.On("GetByID", mock.Anything, clientID).Return(&models.Client{ID: clientID, Email: "billing@acme.com"}, nil)
	repo.On("NextInvoiceNumber", mock.Anything).Return("INV-000042", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Invoice")).Return(nil)

	invoice, err := service.CreateInvoice(context.Background(), InvoiceInput{
		ClientID: clientID,
		LineItems: models.LineItems{
			{Description: "Design work", Quantity: 2, Rate: 50},
		},
		TaxRate: 10,
		DueDate: time.Now().AddDate(0, 1, 0),
	}, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, "INV-000042", invoice.InvoiceNumber)
	assert.Equal(t, 100.0, invoice.Subtotal)
	assert.Equal(t, 10.0, invoice.TaxAmount)
	assert.Equal(t, 110.0, invoice.TotalAmount)
	assert.Equal(t, 110.0, invoice.BalanceDue)
	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, 100.0, invoice.LineItems[0].Amount)
}

func TestInvoiceService_TotalsIdentityWithDiscount(t *testing.T) {
	repo := new(mockInvoiceRepo)
	clients := new(mockClientLoader)
	service := NewInvoiceService(repo, clients, nil, nil, nil)

	clientID := uuid.New()
	clients.On("GetByID", mock.Anything, clientID).Return(&models.Client{ID: clientID}, nil)
	repo.On("NextInvoiceNumber", mock.Anything).Return("INV-000043", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Invoice")).Return(nil)

	invoice, err := service.CreateInvoice(context.Background(), InvoiceInput{
		ClientID: clientID,
		LineItems: models.LineItems{
			{Description: "Consulting", Quantity: 3, Rate: 99.99},
			{Description: "Hosting", Quantity: 1, Rate: 25.50},
		},
		TaxRate:        8.25,
		DiscountAmount: 20,
		DueDate:        time.Now().AddDate(0, 0, 14),
	}, uuid.New())

	assert.NoError(t, err)
	// subtotal = round(299.97) + round(25.50)
	assert.Equal(t, 325.47, invoice.Subtotal)
	assert.Equal(t, models.Round2(invoice.Subtotal*8.25/100), invoice.TaxAmount)
	assert.Equal(t, models.Round2(invoice.Subtotal+invoice.TaxAmount-20), invoice.TotalAmount)
	assert.Equal(t, invoice.TotalAmount, invoice.BalanceDue)
}

func TestInvoiceService_UpdateNonDraftConflicts(t *testing.T) {
	repo := new(mockInvoiceRepo)
	clients := new(mockClientLoader)
	service := NewInvoiceService(repo, clients, nil, nil, nil)

	invoiceID := uuid.New()
	sent := &models.Invoice{ID: invoiceID, Status: models.InvoiceStatusSent}
	repo.On("GetByID", mock.Anything, invoiceID).Return(sent, nil)

	_, err := service.UpdateDraft(context.Background(), invoiceID, InvoiceInput{
		LineItems: models.LineItems{{Description: "Anything", Quantity: 1, Rate: 1}},
	})

	assert.ErrorIs(t, err, apperror.ErrNotDraft)
	repo.AssertNotCalled(t, "UpdateDraft", mock.Anything, mock.Anything)
}

func TestInvoiceService_ResendSentInvoiceAllowed(t *testing.T) {
	repo := new(mockInvoiceRepo)
	clients := new(mockClientLoader)
	service := NewInvoiceService(repo, clients, nil, nil, nil)

	invoiceID := uuid.New()
	clientID := uuid.New()
	sentAt := time.Now().Add(-time.Hour)
	sent := &models.Invoice{
		ID:       invoiceID,
		ClientID: clientID,
		Status:   models.InvoiceStatusSent,
		SentAt:   &sentAt,
	}

	// Повторная отправка - путь ретрая доставки письма:
	// репозиторий пропускает sent -> sent, первый sent_at сохраняется.
	repo.On("MarkSent", mock.Anything, invoiceID).Return(sent, nil)
	clients.On("GetByID", mock.Anything, clientID).Return(&models.Client{ID: clientID, Email: "billing@acme.com"}, nil).Maybe()

	got, err := service.SendInvoice(context.Background(), invoiceID)

	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, got.Status)
	assert.Equal(t, sentAt, *got.SentAt)
}

func TestInvoiceService_CreateRequiresLineItems(t *testing.T) {
	service := NewInvoiceService(new(mockInvoiceRepo), new(mockClientLoader), nil, nil, nil)

	_, err := service.CreateInvoice(context.Background(), InvoiceInput{
		ClientID: uuid.New(),
		DueDate:  time.Now(),
	}, uuid.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "позицию")
}

func TestInvoiceService_NegativeRateRejected(t *testing.T) {
	service := NewInvoiceService(new(mockInvoiceRepo), new(mockClientLoader), nil, nil, nil)

	_, err := service.CreateInvoice(context.Background(), InvoiceInput{
		ClientID: uuid.New(),
		LineItems: models.LineItems{
			{Description: "Refund", Quantity: 1, Rate: -10},
		},
		DueDate: time.Now(),
	}, uuid.New())

	assert.Error(t, err)
}
