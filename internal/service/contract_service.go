package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/goroutine"
	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// ContractRepository описывает взаимодействие сервиса с хранилищем контрактов.
type ContractRepository interface {
	NextContractNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Contract, error)
	UpdateDraft(ctx context.Context, c *models.Contract) error
	MarkSent(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Transition(ctx context.Context, id uuid.UUID, from, to string, at time.Time) (*models.Contract, error)
	ListNeedsAttention(ctx context.Context, now time.Time) ([]models.Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContractClientLoader описывает минимальный контракт для загрузки клиента.
type ContractClientLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// ContractService содержит бизнес-логику цепочки подписания контрактов.
type ContractService struct {
	repo     ContractRepository
	clients  ContractClientLoader
	notifier *NotificationService
	now      func() time.Time
}

// NewContractService создаёт новый сервис контрактов.
func NewContractService(repo ContractRepository, clients ContractClientLoader, notifier *NotificationService) *ContractService {
	return &ContractService{
		repo:     repo,
		clients:  clients,
		notifier: notifier,
		now:      time.Now,
	}
}

// ContractInput описывает входные данные контракта.
type ContractInput struct {
	Title          string
	ClientID       uuid.UUID
	ProjectID      *uuid.UUID
	Content        string
	LineItems      models.LineItems
	ExpirationDate *time.Time
}

// CreateContract создаёт черновик контракта.
func (s *ContractService) CreateContract(ctx context.Context, in ContractInput, createdBy uuid.UUID) (*models.Contract, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, fmt.Errorf("contract service: %w", err)
	}
	if err := validation.ValidateNonEmpty("текст контракта", in.Content); err != nil {
		return nil, fmt.Errorf("contract service: %w", err)
	}
	if _, err := s.clients.GetByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextContractNumber(ctx)
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ContractNumber: number,
		Title:          in.Title,
		ClientID:       in.ClientID,
		ProjectID:      in.ProjectID,
		Content:        in.Content,
		LineItems:      in.LineItems,
		TotalAmount:    lineItemsTotal(in.LineItems),
		Status:         models.ContractStatusDraft,
		ExpirationDate: in.ExpirationDate,
		CreatedByID:    createdBy,
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, err
	}

	return contract, nil
}

// GetContract возвращает контракт по идентификатору.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.repo.GetByID(ctx, id)
}

// ListContracts возвращает контракты с фильтрами по клиенту и статусу.
func (s *ContractService) ListContracts(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Contract, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, clientID, status, limit, offset)
}

// UpdateDraft изменяет черновик контракта. Отправленный контракт неизменяем.
func (s *ContractService) UpdateDraft(ctx context.Context, id uuid.UUID, in ContractInput) (*models.Contract, error) {
	contract, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusDraft {
		return nil, apperror.ErrNotDraft
	}

	if in.Title != "" {
		if err := validation.ValidateTitle(in.Title); err != nil {
			return nil, fmt.Errorf("contract service: %w", err)
		}
		contract.Title = in.Title
	}
	if in.Content != "" {
		contract.Content = in.Content
	}
	if in.LineItems != nil {
		contract.LineItems = in.LineItems
		contract.TotalAmount = lineItemsTotal(in.LineItems)
	}
	if in.ExpirationDate != nil {
		contract.ExpirationDate = in.ExpirationDate
	}

	if err := s.repo.UpdateDraft(ctx, contract); err != nil {
		return nil, err
	}

	return contract, nil
}

// SendContract переводит контракт из draft в sent.
func (s *ContractService) SendContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.MarkSent(ctx, id)
	if err != nil {
		return nil, err
	}

	goroutine.SafeGo(func() {
		s.notifySent(context.Background(), contract)
	})

	return contract, nil
}

func (s *ContractService) notifySent(ctx context.Context, contract *models.Contract) {
	client, err := s.clients.GetByID(ctx, contract.ClientID)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithField("contract_id", contract.ID).
				WithError(err).Warn("contract service: клиент для доставки не найден")
		}
		return
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID:       contract.CreatedByID,
			Event:        "contract.sent",
			Data:         contract,
			EmailTo:      client.Email,
			EmailSubject: fmt.Sprintf("Contract %s: %s", contract.ContractNumber, contract.Title),
			EmailBody:    fmt.Sprintf("Contract %s is ready for your signature.\n", contract.ContractNumber),
		})
	}
}

// RecordSignature фиксирует очередную подпись и продвигает контракт по
// цепочке статусов. Недопустимый исходный статус возвращает конфликт.
func (s *ContractService) RecordSignature(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := models.ValidContractSignTransitions[contract.Status]
	if !ok {
		return nil, apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("контракт в статусе %q не принимает подписи", contract.Status))
	}

	updated, err := s.repo.Transition(ctx, id, contract.Status, next, s.now())
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID: updated.CreatedByID,
			Event:  "contract." + updated.Status,
			Data:   updated,
		})
	}

	return updated, nil
}

// ListNeedsAttention возвращает контракты, требующие внимания: ожидающие
// подписи либо истекающие в ближайшие 30 дней. Запрос только читает данные.
func (s *ContractService) ListNeedsAttention(ctx context.Context) ([]models.Contract, error) {
	return s.repo.ListNeedsAttention(ctx, s.now())
}

// DeleteContract удаляет черновик контракта.
func (s *ContractService) DeleteContract(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// lineItemsTotal суммирует позиции с округлением до центов.
func lineItemsTotal(items models.LineItems) float64 {
	total := 0.0
	for _, item := range items {
		total += models.Round2(item.Quantity * item.Rate)
	}
	return models.Round2(total)
}
