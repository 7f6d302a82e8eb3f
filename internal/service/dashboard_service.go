package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// DashboardService собирает сводку по задачам, счетам и контрактам.
type DashboardService struct {
	tasks     TaskRepository
	timelogs  TimeLogRepository
	invoices  InvoiceRepository
	contracts ContractRepository
}

// NewDashboardService создаёт сервис сводки.
func NewDashboardService(tasks TaskRepository, timelogs TimeLogRepository, invoices InvoiceRepository, contracts ContractRepository) *DashboardService {
	return &DashboardService{
		tasks:     tasks,
		timelogs:  timelogs,
		invoices:  invoices,
		contracts: contracts,
	}
}

// DashboardSummary описывает сводку для главного экрана.
type DashboardSummary struct {
	OpenTasks          []models.Task     `json:"open_tasks"`
	RunningTimer       *models.TimeLog   `json:"running_timer,omitempty"`
	OverdueInvoices    []models.Invoice  `json:"overdue_invoices"`
	AttentionContracts []models.Contract `json:"attention_contracts"`
}

// Summary возвращает сводку пользователя. Частичные сбои не валят весь
// запрос: недоступный раздел возвращается пустым.
func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		OpenTasks:          []models.Task{},
		OverdueInvoices:    []models.Invoice{},
		AttentionContracts: []models.Contract{},
	}

	if tasks, err := s.tasks.List(ctx, &userID, models.TaskStatusInProgress, 20, 0); err == nil {
		summary.OpenTasks = tasks
	}

	running, err := s.timelogs.GetRunning(ctx, userID)
	if err == nil {
		summary.RunningTimer = running
	} else if !errors.Is(err, repository.ErrTimeLogNotFound) {
		return nil, err
	}

	if overdue, err := s.invoices.ListOverdue(ctx); err == nil {
		summary.OverdueInvoices = overdue
	}

	if attention, err := s.contracts.ListNeedsAttention(ctx, time.Now()); err == nil {
		summary.AttentionContracts = attention
	}

	return summary, nil
}
