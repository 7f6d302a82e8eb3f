package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/render"
)

// OverdueSweepRepository описывает выборку счетов для фонового обхода.
type OverdueSweepRepository interface {
	SweepOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
}

// AttentionRepository описывает выборку контрактов, требующих внимания.
type AttentionRepository interface {
	ListNeedsAttention(ctx context.Context, now time.Time) ([]models.Contract, error)
}

// Sweeper периодически помечает просроченные счета и напоминает о контрактах,
// требующих внимания. Переход sent -> overdue выполняется условным UPDATE,
// поэтому напоминание по каждому счёту уходит ровно один раз даже при
// нескольких параллельных экземплярах сервиса.
type Sweeper struct {
	invoices  OverdueSweepRepository
	contracts AttentionRepository
	clients   InvoiceClientLoader
	notifier  *NotificationService
	interval  time.Duration
	now       func() time.Time
}

// NewSweeper создаёт фоновый обходчик.
func NewSweeper(invoices OverdueSweepRepository, contracts AttentionRepository, clients InvoiceClientLoader, notifier *NotificationService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		invoices:  invoices,
		contracts: contracts,
		clients:   clients,
		notifier:  notifier,
		interval:  interval,
		now:       time.Now,
	}
}

// Run запускает цикл обхода до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый проход сразу при старте
	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce выполняет один проход обхода.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	s.sweepInvoices(ctx)
	s.checkContracts(ctx)
}

// sweepInvoices переводит просроченные счета в overdue и рассылает напоминания.
func (s *Sweeper) sweepInvoices(ctx context.Context) {
	flipped, err := s.invoices.SweepOverdue(ctx, s.now())
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("sweeper: обход счетов не удался")
		}
		return
	}
	if len(flipped) == 0 {
		return
	}

	if logger.Log != nil {
		logger.Log.WithField("count", len(flipped)).Info("sweeper: счета помечены как просроченные")
	}

	for i := range flipped {
		invoice := &flipped[i]

		emailTo := ""
		if s.clients != nil {
			if client, err := s.clients.GetByID(ctx, invoice.ClientID); err == nil {
				emailTo = client.Email
			}
		}

		if s.notifier != nil {
			s.notifier.Dispatch(ctx, DispatchInput{
				UserID: invoice.CreatedByID,
				Event:  "invoice.overdue",
				Data: map[string]interface{}{
					"invoice_number": invoice.InvoiceNumber,
					"balance_due":    render.FormatMoney(invoice.BalanceDue),
					"due_date":       invoice.DueDate,
				},
				EmailTo:      emailTo,
				EmailSubject: fmt.Sprintf("Invoice %s is overdue", invoice.InvoiceNumber),
				EmailBody: fmt.Sprintf("Invoice %s for $%s was due %s. Please arrange payment.\n",
					invoice.InvoiceNumber, render.FormatMoney(invoice.BalanceDue), invoice.DueDate.Format("January 2, 2006")),
			})
		}
	}
}

// checkContracts логирует контракты, требующие внимания. Запрос только
// читает данные, поэтому проход не создаёт повторных уведомлений.
func (s *Sweeper) checkContracts(ctx context.Context) {
	if s.contracts == nil {
		return
	}

	attention, err := s.contracts.ListNeedsAttention(ctx, s.now())
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("sweeper: обход контрактов не удался")
		}
		return
	}

	for i := range attention {
		contract := &attention[i]
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"contract_id": contract.ID,
				"number":      contract.ContractNumber,
				"status":      contract.Status,
			}).Info("sweeper: контракт требует внимания")
		}
	}
}
