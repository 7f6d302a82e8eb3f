package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/render"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// TemplateRepository описывает взаимодействие сервиса с хранилищем шаблонов.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *models.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	List(ctx context.Context, userID uuid.UUID, templateType string, limit, offset int) ([]models.Template, error)
	Update(ctx context.Context, tpl *models.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateDrafter описывает контракт с AI подсистемой для черновиков шаблонов.
type TemplateDrafter interface {
	Enabled() bool
	DraftTemplate(ctx context.Context, templateType, description string) (string, error)
}

// TemplateService содержит бизнес-логику работы с шаблонами документов.
type TemplateService struct {
	repo TemplateRepository
	ai   TemplateDrafter
}

// NewTemplateService создаёт новый сервис шаблонов.
// ai опционален: nil отключает генерацию черновиков.
func NewTemplateService(repo TemplateRepository, ai TemplateDrafter) *TemplateService {
	return &TemplateService{repo: repo, ai: ai}
}

// CreateTemplate создаёт шаблон документа.
func (s *TemplateService) CreateTemplate(ctx context.Context, tpl *models.Template) (*models.Template, error) {
	if err := validation.ValidateNonEmpty("название шаблона", tpl.Name); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if _, ok := models.ValidTemplateTypes[tpl.Type]; !ok {
		return nil, fmt.Errorf("template service: неизвестный тип шаблона %q", tpl.Type)
	}
	for _, field := range tpl.Variables {
		if field.Name == "" {
			return nil, fmt.Errorf("template service: поле шаблона должно иметь имя")
		}
		switch field.Type {
		case models.FieldTypeText, models.FieldTypeTextarea, models.FieldTypeNumber,
			models.FieldTypeDate, models.FieldTypeEmail, models.FieldTypePhone,
			models.FieldTypeLineItems:
		default:
			return nil, fmt.Errorf("template service: неизвестный тип поля %q", field.Type)
		}
	}

	// Системные шаблоны создаются только сидом, не через API
	tpl.IsSystem = false

	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}

	return tpl, nil
}

// GetTemplate возвращает шаблон, доступный пользователю.
func (s *TemplateService) GetTemplate(ctx context.Context, id, userID uuid.UUID) (*models.Template, error) {
	tpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tpl.IsSystem && !tpl.IsPublic && tpl.CreatedByID != userID {
		return nil, apperror.ErrForbidden
	}
	return tpl, nil
}

// ListTemplates возвращает шаблоны пользователя плюс публичные и системные.
func (s *TemplateService) ListTemplates(ctx context.Context, userID uuid.UUID, templateType string, limit, offset int) ([]models.Template, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if templateType != "" {
		if _, ok := models.ValidTemplateTypes[templateType]; !ok {
			return nil, fmt.Errorf("template service: неизвестный тип шаблона %q", templateType)
		}
	}
	return s.repo.List(ctx, userID, templateType, limit, offset)
}

// UpdateTemplate обновляет шаблон. Системные шаблоны менять нельзя,
// чужие — только владельцу.
func (s *TemplateService) UpdateTemplate(ctx context.Context, tpl *models.Template, userID uuid.UUID) (*models.Template, error) {
	existing, err := s.repo.GetByID(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsSystem {
		return nil, fmt.Errorf("template service: системный шаблон нельзя изменить")
	}
	if existing.CreatedByID != userID {
		return nil, apperror.ErrForbidden
	}

	tpl.IsSystem = false
	tpl.CreatedByID = existing.CreatedByID

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}

	return tpl, nil
}

// DeleteTemplate удаляет шаблон владельца. Системные шаблоны защищены.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id, userID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("template service: системный шаблон нельзя удалить")
	}
	if existing.CreatedByID != userID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// PreviewTemplate рендерит шаблон с переданными значениями полей.
// Рендеринг детерминированный: одинаковые значения дают одинаковый результат.
func (s *TemplateService) PreviewTemplate(ctx context.Context, id, userID uuid.UUID, title string, values models.ValuesMap) (string, error) {
	tpl, err := s.GetTemplate(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return render.Render(tpl, values, title), nil
}

// DraftTemplateContent генерирует черновик содержимого шаблона через AI.
func (s *TemplateService) DraftTemplateContent(ctx context.Context, templateType, description string) (string, error) {
	if s.ai == nil || !s.ai.Enabled() {
		return "", fmt.Errorf("template service: AI генерация не настроена")
	}
	if _, ok := models.ValidTemplateTypes[templateType]; !ok {
		return "", fmt.Errorf("template service: неизвестный тип шаблона %q", templateType)
	}
	return s.ai.DraftTemplate(ctx, templateType, description)
}
