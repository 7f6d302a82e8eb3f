package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/repository"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// ClientRepository описывает взаимодействие сервиса с хранилищем клиентов.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	List(ctx context.Context, limit, offset int) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientService содержит бизнес-логику работы с клиентами.
type ClientService struct {
	repo ClientRepository
}

// NewClientService создаёт новый сервис клиентов.
func NewClientService(repo ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

// ClientInput описывает входные данные клиента.
type ClientInput struct {
	Name        string
	Email       string
	Phone       *string
	CompanyName *string
	Notes       *string
}

// CreateClient создаёт клиента.
func (s *ClientService) CreateClient(ctx context.Context, in ClientInput, createdBy uuid.UUID) (*models.Client, error) {
	if err := validation.ValidateNonEmpty("имя клиента", in.Name); err != nil {
		return nil, fmt.Errorf("client service: %w", err)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("client service: %w", err)
	}

	client := &models.Client{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		CompanyName: in.CompanyName,
		Notes:       in.Notes,
		CreatedByID: createdBy,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// EnsureClient возвращает существующего клиента по точному совпадению email
// или создаёт нового. Нормализация email не выполняется: "A@x.com" и
// "a@x.com" считаются разными записями.
func (s *ClientService) EnsureClient(ctx context.Context, name, email string, createdBy uuid.UUID) (*models.Client, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("client service: %w", err)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrClientNotFound) {
		return nil, err
	}

	client := &models.Client{
		Name:        name,
		Email:       email,
		CreatedByID: createdBy,
	}
	if client.Name == "" {
		client.Name = email
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient возвращает клиента по идентификатору.
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.repo.GetByID(ctx, id)
}

// ListClients возвращает список клиентов.
func (s *ClientService) ListClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateClient обновляет данные клиента.
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, in ClientInput) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		client.Name = in.Name
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, fmt.Errorf("client service: %w", err)
		}
		client.Email = in.Email
	}
	if in.Phone != nil {
		client.Phone = in.Phone
	}
	if in.CompanyName != nil {
		client.CompanyName = in.CompanyName
	}
	if in.Notes != nil {
		client.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient удаляет клиента.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
