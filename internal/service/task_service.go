package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// TaskRepository описывает взаимодействие сервиса с хранилищем задач.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	List(ctx context.Context, assigneeID *uuid.UUID, status string, limit, offset int) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskService содержит бизнес-логику работы с задачами.
type TaskService struct {
	repo     TaskRepository
	notifier *NotificationService
}

// NewTaskService создаёт новый сервис задач.
func NewTaskService(repo TaskRepository, notifier *NotificationService) *TaskService {
	return &TaskService{repo: repo, notifier: notifier}
}

// CreateTask создаёт задачу и уведомляет исполнителя.
func (s *TaskService) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := validation.ValidateTitle(task.Title); err != nil {
		return nil, fmt.Errorf("task service: %w", err)
	}

	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if _, ok := models.ValidTaskStatuses[task.Status]; !ok {
		return nil, fmt.Errorf("task service: неизвестный статус задачи %q", task.Status)
	}

	if err := s.checkDependencies(ctx, uuid.Nil, task.DependsOn); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	if s.notifier != nil && task.AssigneeID != nil && *task.AssigneeID != task.CreatedByID {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID: *task.AssigneeID,
			Event:  "task.assigned",
			Data:   task,
		})
	}

	return task, nil
}

// GetTask возвращает задачу по идентификатору.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTasks возвращает задачи с фильтрами по исполнителю и статусу.
func (s *TaskService) ListTasks(ctx context.Context, assigneeID *uuid.UUID, status string, limit, offset int) ([]models.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if status != "" {
		if _, ok := models.ValidTaskStatuses[status]; !ok {
			return nil, fmt.Errorf("task service: неизвестный статус задачи %q", status)
		}
	}
	return s.repo.List(ctx, assigneeID, status, limit, offset)
}

// UpdateTask обновляет задачу. Изменение зависимостей проверяется на циклы.
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	existing, err := s.repo.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	if task.Status != "" {
		if _, ok := models.ValidTaskStatuses[task.Status]; !ok {
			return nil, fmt.Errorf("task service: неизвестный статус задачи %q", task.Status)
		}
	}

	// Задачу нельзя завершить, пока открыты её зависимости
	if task.Status == models.TaskStatusDone {
		for _, depID := range existing.DependsOn {
			dep, err := s.repo.GetByID(ctx, depID)
			if err != nil {
				return nil, err
			}
			if dep.Status != models.TaskStatusDone {
				return nil, fmt.Errorf("task service: нельзя завершить задачу, пока не закрыта зависимость %q", dep.Title)
			}
		}
	}

	if err := s.checkDependencies(ctx, task.ID, task.DependsOn); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	if s.notifier != nil && task.AssigneeID != nil &&
		(existing.AssigneeID == nil || *existing.AssigneeID != *task.AssigneeID) {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID: *task.AssigneeID,
			Event:  "task.assigned",
			Data:   task,
		})
	}

	return task, nil
}

// DeleteTask удаляет задачу. Операция доступна только администраторам.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID, role string) error {
	if role != models.RoleAdmin {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// checkDependencies проверяет, что граф зависимостей не содержит цикла,
// проходящего через задачу taskID. Для новой задачи taskID равен uuid.Nil.
func (s *TaskService) checkDependencies(ctx context.Context, taskID uuid.UUID, deps models.UUIDSlice) error {
	if len(deps) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	stack := make([]uuid.UUID, 0, len(deps))
	for _, d := range deps {
		if d == taskID {
			return fmt.Errorf("task service: задача не может зависеть от самой себя")
		}
		stack = append(stack, d)
	}

	// Обход в глубину по цепочке depends_on
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true

		dep, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("task service: зависимость %s не найдена: %w", id, err)
		}

		for _, next := range dep.DependsOn {
			if next == taskID {
				return fmt.Errorf("task service: циклическая зависимость через задачу %q", dep.Title)
			}
			if !seen[next] {
				stack = append(stack, next)
			}
		}
	}

	return nil
}
