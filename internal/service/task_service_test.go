package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/repository"
)

// mockTaskRepository хранит задачи в памяти.
type mockTaskRepository struct {
	tasks map[uuid.UUID]*models.Task
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *mockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		return task, nil
	}
	return nil, repository.ErrTaskNotFound
}

func (m *mockTaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	var out []models.Task
	for _, task := range m.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *mockTaskRepository) List(ctx context.Context, assigneeID *uuid.UUID, status string, limit, offset int) ([]models.Task, error) {
	var out []models.Task
	for _, task := range m.tasks {
		if assigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *assigneeID) {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (m *mockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func TestTaskService_SelfDependencyRejected(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)
	ctx := context.Background()

	task := &models.Task{Title: "Ship release", CreatedByID: uuid.New()}
	created, err := service.CreateTask(ctx, task)
	assert.NoError(t, err)

	created.DependsOn = models.UUIDSlice{created.ID}
	_, err = service.UpdateTask(ctx, created)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "самой себя")
}

func TestTaskService_CircularDependencyRejected(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)
	ctx := context.Background()

	owner := uuid.New()
	a := &models.Task{Title: "Design mockups", CreatedByID: owner}
	b := &models.Task{Title: "Implement frontend", CreatedByID: owner}
	c := &models.Task{Title: "Release website", CreatedByID: owner}

	for _, task := range []*models.Task{a, b, c} {
		if _, err := service.CreateTask(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// c -> b -> a: линейная цепочка допустима
	b.DependsOn = models.UUIDSlice{a.ID}
	_, err := service.UpdateTask(ctx, b)
	assert.NoError(t, err)

	c.DependsOn = models.UUIDSlice{b.ID}
	_, err = service.UpdateTask(ctx, c)
	assert.NoError(t, err)

	// a -> c замыкает цикл
	a.DependsOn = models.UUIDSlice{c.ID}
	_, err = service.UpdateTask(ctx, a)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "циклическая")
}

func TestTaskService_CannotCompleteWithOpenDependency(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)
	ctx := context.Background()

	owner := uuid.New()
	dep := &models.Task{Title: "Write copy", CreatedByID: owner}
	_, err := service.CreateTask(ctx, dep)
	assert.NoError(t, err)

	task := &models.Task{Title: "Publish page", CreatedByID: owner, DependsOn: models.UUIDSlice{dep.ID}}
	_, err = service.CreateTask(ctx, task)
	assert.NoError(t, err)

	task.Status = models.TaskStatusDone
	_, err = service.UpdateTask(ctx, task)
	assert.Error(t, err)

	// После закрытия зависимости завершение проходит
	dep.Status = models.TaskStatusDone
	_, err = service.UpdateTask(ctx, dep)
	assert.NoError(t, err)

	task.Status = models.TaskStatusDone
	_, err = service.UpdateTask(ctx, task)
	assert.NoError(t, err)
}

func TestTaskService_DeleteRequiresAdmin(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)
	ctx := context.Background()

	task := &models.Task{Title: "Cleanup backlog", CreatedByID: uuid.New()}
	_, err := service.CreateTask(ctx, task)
	assert.NoError(t, err)

	err = service.DeleteTask(ctx, task.ID, models.RoleMember)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = service.DeleteTask(ctx, task.ID, models.RoleAdmin)
	assert.NoError(t, err)
}
