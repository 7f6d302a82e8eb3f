package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vsuitehq/gigster-backend/internal/models"
)

type mockSweepRepo struct {
	mock.Mock
}

func (m *mockSweepRepo) SweepOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

type mockAttentionRepo struct {
	mock.Mock
}

func (m *mockAttentionRepo) ListNeedsAttention(ctx context.Context, now time.Time) ([]models.Contract, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func TestSweeper_OverdueReminderSentOncePerInvoice(t *testing.T) {
	invoices := new(mockSweepRepo)
	contracts := new(mockAttentionRepo)
	store := &mockNotificationStore{}
	notifier := NewNotificationService(store, nil, nil)
	sweeper := NewSweeper(invoices, contracts, nil, notifier, time.Hour)

	ownerID := uuid.New()
	overdue := []models.Invoice{
		{ID: uuid.New(), InvoiceNumber: "INV-000001", BalanceDue: 150, DueDate: time.Now().AddDate(0, 0, -3), CreatedByID: ownerID},
		{ID: uuid.New(), InvoiceNumber: "INV-000002", BalanceDue: 900, DueDate: time.Now().AddDate(0, 0, -1), CreatedByID: ownerID},
	}

	// Первый проход: два счёта перешли в overdue
	invoices.On("SweepOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return(overdue, nil).Once()
	contracts.On("ListNeedsAttention", mock.Anything, mock.AnythingOfType("time.Time")).Return([]models.Contract{}, nil)

	sweeper.SweepOnce(context.Background())
	assert.Len(t, store.created, 2)

	// Второй проход: условный UPDATE уже ничего не возвращает,
	// повторных напоминаний нет
	invoices.On("SweepOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return([]models.Invoice{}, nil).Once()

	sweeper.SweepOnce(context.Background())
	assert.Len(t, store.created, 2)
}

func TestSweeper_SweepErrorDoesNotPanic(t *testing.T) {
	invoices := new(mockSweepRepo)
	contracts := new(mockAttentionRepo)
	sweeper := NewSweeper(invoices, contracts, nil, nil, time.Hour)

	invoices.On("SweepOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, assert.AnError)
	contracts.On("ListNeedsAttention", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, assert.AnError)

	sweeper.SweepOnce(context.Background())
}

func TestSweeper_RunStopsOnContextCancel(t *testing.T) {
	invoices := new(mockSweepRepo)
	sweeper := NewSweeper(invoices, nil, nil, nil, 10*time.Millisecond)

	invoices.On("SweepOverdue", mock.Anything, mock.AnythingOfType("time.Time")).Return([]models.Invoice{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper не остановился по отмене контекста")
	}
}
