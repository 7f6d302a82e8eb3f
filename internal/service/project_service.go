package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// ProjectRepository описывает взаимодействие сервиса с хранилищем проектов.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, clientID *uuid.UUID, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectService содержит бизнес-логику работы с проектами.
type ProjectService struct {
	repo ProjectRepository
}

// NewProjectService создаёт новый сервис проектов.
func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// ProjectInput описывает входные данные проекта.
type ProjectInput struct {
	Name        string
	Description *string
	ClientID    *uuid.UUID
	Status      string
}

// CreateProject создаёт проект.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput, createdBy uuid.UUID) (*models.Project, error) {
	if err := validation.ValidateNonEmpty("название проекта", in.Name); err != nil {
		return nil, fmt.Errorf("project service: %w", err)
	}

	status := in.Status
	if status == "" {
		status = "active"
	}

	project := &models.Project{
		Name:        in.Name,
		Description: in.Description,
		ClientID:    in.ClientID,
		Status:      status,
		CreatedByID: createdBy,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// GetProject возвращает проект по идентификатору.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProjects возвращает список проектов с опциональным фильтром по клиенту.
func (s *ProjectService) ListProjects(ctx context.Context, clientID *uuid.UUID, limit, offset int) ([]models.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, clientID, limit, offset)
}

// UpdateProject обновляет проект.
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		project.Name = in.Name
	}
	if in.Description != nil {
		project.Description = in.Description
	}
	if in.ClientID != nil {
		project.ClientID = in.ClientID
	}
	if in.Status != "" {
		project.Status = in.Status
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject удаляет проект.
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
