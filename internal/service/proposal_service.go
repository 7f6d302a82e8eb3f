package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsuitehq/gigster-backend/internal/goroutine"
	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/mailer"
	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
	"github.com/vsuitehq/gigster-backend/internal/render"
	"github.com/vsuitehq/gigster-backend/internal/validation"
)

// ProposalRepository описывает взаимодействие сервиса с хранилищем предложений.
type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetByShareableLink(ctx context.Context, link string) (*models.Proposal, error)
	List(ctx context.Context, createdByID uuid.UUID, status string, limit, offset int) ([]models.Proposal, error)
	MarkSent(ctx context.Context, id uuid.UUID, link string) (*models.Proposal, error)
	MarkViewed(ctx context.Context, link string) error
	Respond(ctx context.Context, link, response string, message *string) (*models.Proposal, error)
	UpdateDraft(ctx context.Context, p *models.Proposal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateLoader описывает минимальный контракт для загрузки шаблона.
type TemplateLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
}

// ClientEnsurer находит клиента по email или создаёт нового.
type ClientEnsurer interface {
	EnsureClient(ctx context.Context, name, email string, createdBy uuid.UUID) (*models.Client, error)
}

// PDFRenderer описывает контракт с внешним PDF рендером.
type PDFRenderer interface {
	Enabled() bool
	Render(ctx context.Context, title, content string) ([]byte, error)
}

// PDFStorage сохраняет готовые PDF документы.
type PDFStorage interface {
	SavePDF(ctx context.Context, documentID uuid.UUID, data []byte) (string, error)
}

// ProposalService содержит бизнес-логику жизненного цикла коммерческих предложений.
type ProposalService struct {
	repo       ProposalRepository
	templates  TemplateLoader
	clients    ClientEnsurer
	notifier   *NotificationService
	pdf        PDFRenderer
	storage    PDFStorage
	baseURL    string
	expiryDays int
	now        func() time.Time
}

// NewProposalService создаёт новый сервис предложений.
// pdf и storage опциональны: nil отключает генерацию PDF при отправке.
func NewProposalService(
	repo ProposalRepository,
	templates TemplateLoader,
	clients ClientEnsurer,
	notifier *NotificationService,
	pdf PDFRenderer,
	storage PDFStorage,
	baseURL string,
	expiryDays int,
) *ProposalService {
	if expiryDays <= 0 {
		expiryDays = 30
	}
	return &ProposalService{
		repo:       repo,
		templates:  templates,
		clients:    clients,
		notifier:   notifier,
		pdf:        pdf,
		storage:    storage,
		baseURL:    baseURL,
		expiryDays: expiryDays,
		now:        time.Now,
	}
}

// CreateProposalInput описывает входные данные предложения.
// Заполняется либо TemplateID с Variables (контент рендерится из шаблона),
// либо Content напрямую.
type CreateProposalInput struct {
	Title         string
	TemplateID    *uuid.UUID
	ProjectID     *uuid.UUID
	ClientName    string
	ClientEmail   string
	Content       string
	Variables     models.ValuesMap
	ExpiresInDays int
}

// CreateProposal создаёт черновик предложения.
// Клиент ищется по точному совпадению email, при отсутствии создаётся новый.
func (s *ProposalService) CreateProposal(ctx context.Context, in CreateProposalInput, createdBy uuid.UUID) (*models.Proposal, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, fmt.Errorf("proposal service: %w", err)
	}
	if err := validation.ValidateEmail(in.ClientEmail); err != nil {
		return nil, fmt.Errorf("proposal service: %w", err)
	}

	content := in.Content
	if in.TemplateID != nil {
		tpl, err := s.templates.GetByID(ctx, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		if tpl.Type != models.TemplateTypeProposal {
			return nil, fmt.Errorf("proposal service: шаблон %q не является шаблоном предложения", tpl.Name)
		}
		content = render.Render(tpl, in.Variables, in.Title)
	}
	if content == "" {
		return nil, fmt.Errorf("proposal service: контент предложения не может быть пустым")
	}

	client, err := s.clients.EnsureClient(ctx, in.ClientName, in.ClientEmail, createdBy)
	if err != nil {
		return nil, err
	}

	expiresIn := in.ExpiresInDays
	if expiresIn == 0 {
		expiresIn = s.expiryDays
	}
	if err := validation.ValidateExpiryDays(expiresIn); err != nil {
		return nil, fmt.Errorf("proposal service: %w", err)
	}

	proposal := &models.Proposal{
		Title:       in.Title,
		TemplateID:  in.TemplateID,
		ProjectID:   in.ProjectID,
		ClientID:    &client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Content:     content,
		Variables:   in.Variables,
		Status:      models.ProposalStatusDraft,
		ExpiresAt:   s.now().AddDate(0, 0, expiresIn),
		Version:     1,
		CreatedByID: createdBy,
	}

	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// GetProposal возвращает предложение по идентификатору.
func (s *ProposalService) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProposals возвращает предложения пользователя с фильтром по статусу.
func (s *ProposalService) ListProposals(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Proposal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, status, limit, offset)
}

// UpdateProposalInput описывает изменяемые поля черновика.
type UpdateProposalInput struct {
	Title     string
	Content   string
	Variables models.ValuesMap
}

// UpdateDraft изменяет черновик. Предложение в любом другом статусе
// неизменяемо, попытка редактирования возвращает конфликт.
func (s *ProposalService) UpdateDraft(ctx context.Context, id uuid.UUID, in UpdateProposalInput, userID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.CreatedByID != userID {
		return nil, apperror.ErrForbidden
	}
	if proposal.Status != models.ProposalStatusDraft {
		return nil, apperror.ErrNotDraft
	}

	if in.Title != "" {
		if err := validation.ValidateTitle(in.Title); err != nil {
			return nil, fmt.Errorf("proposal service: %w", err)
		}
		proposal.Title = in.Title
	}
	if in.Content != "" {
		proposal.Content = in.Content
	}
	if in.Variables != nil {
		proposal.Variables = in.Variables
		if proposal.TemplateID != nil {
			tpl, err := s.templates.GetByID(ctx, *proposal.TemplateID)
			if err == nil {
				proposal.Content = render.Render(tpl, in.Variables, proposal.Title)
			}
		}
	}

	if err := s.repo.UpdateDraft(ctx, proposal); err != nil {
		return nil, err
	}

	return proposal, nil
}

// SendProposal переводит предложение в статус sent и выдаёт публичную ссылку.
// Ссылка выдаётся ровно один раз: повторная отправка возвращает ту же ссылку.
// PDF и письмо клиенту выполняются в фоне и не влияют на итог операции.
func (s *ProposalService) SendProposal(ctx context.Context, id, userID uuid.UUID, in SendProposalInput) (*models.Proposal, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatedByID != userID {
		return nil, apperror.ErrForbidden
	}

	proposal, err := s.repo.MarkSent(ctx, id, uuid.NewString())
	if err != nil {
		return nil, err
	}

	// Побочные эффекты после фиксации перехода
	goroutine.SafeGo(func() {
		s.deliverProposal(context.Background(), proposal, in)
	})

	return proposal, nil
}

// SendProposalInput несёт необязательные параметры отправки: адрес получателя
// вместо сохранённого email клиента и сопроводительное сообщение для письма.
type SendProposalInput struct {
	ClientEmail *string
	Message     *string
}

// deliverProposal рендерит PDF и отправляет письмо клиенту.
func (s *ProposalService) deliverProposal(ctx context.Context, proposal *models.Proposal, in SendProposalInput) {
	link := s.ShareURL(proposal)

	var attachments []mailer.Attachment
	if s.pdf != nil && s.pdf.Enabled() && s.storage != nil {
		data, err := s.pdf.Render(ctx, proposal.Title, proposal.Content)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithField("proposal_id", proposal.ID).
					WithError(err).Warn("proposal service: PDF рендер не удался")
			}
		} else {
			if _, err := s.storage.SavePDF(ctx, proposal.ID, data); err != nil && logger.Log != nil {
				logger.Log.WithField("proposal_id", proposal.ID).
					WithError(err).Warn("proposal service: PDF не сохранён")
			}
			attachments = append(attachments, mailer.Attachment{
				Filename:    fmt.Sprintf("proposal-%s.pdf", proposal.ID),
				ContentType: "application/pdf",
				Data:        data,
			})
		}
	}

	emailTo := proposal.ClientEmail
	if in.ClientEmail != nil && *in.ClientEmail != "" {
		emailTo = *in.ClientEmail
	}
	body := fmt.Sprintf("You have received a proposal.\n\nView and respond: %s\n", link)
	if in.Message != nil && *in.Message != "" {
		body = fmt.Sprintf("%s\n\n%s", *in.Message, body)
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID:           proposal.CreatedByID,
			Event:            "proposal.sent",
			Data:             proposal,
			EmailTo:          emailTo,
			EmailSubject:     fmt.Sprintf("Proposal: %s", proposal.Title),
			EmailBody:        body,
			EmailAttachments: attachments,
		})
	}
}

// ShareURL возвращает публичный URL предложения или пустую строку,
// если ссылка ещё не выдана.
func (s *ProposalService) ShareURL(proposal *models.Proposal) string {
	if proposal.ShareableLink == nil {
		return ""
	}
	return fmt.Sprintf("%s/shared/proposals/%s", s.baseURL, *proposal.ShareableLink)
}

// ViewByLink возвращает предложение по публичной ссылке и фиксирует первый
// просмотр. Повторные просмотры не меняют viewed_at.
func (s *ProposalService) ViewByLink(ctx context.Context, link string) (*models.Proposal, error) {
	if err := s.repo.MarkViewed(ctx, link); err != nil {
		return nil, err
	}
	return s.repo.GetByShareableLink(ctx, link)
}

// Respond фиксирует ответ клиента по публичной ссылке.
// Истёкшее предложение не принимает ответы. Повторный ответ невозможен.
func (s *ProposalService) Respond(ctx context.Context, link, response string, message *string) (*models.Proposal, error) {
	if _, ok := models.ValidProposalResponses[response]; !ok {
		return nil, fmt.Errorf("proposal service: недопустимый ответ %q", response)
	}

	proposal, err := s.repo.GetByShareableLink(ctx, link)
	if err != nil {
		return nil, err
	}
	if proposal.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeConflict, "ответ на предложение уже зафиксирован")
	}
	if proposal.IsExpired(s.now()) {
		return nil, apperror.ErrProposalExpired
	}

	updated, err := s.repo.Respond(ctx, link, response, message)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, DispatchInput{
			UserID: updated.CreatedByID,
			Event:  "proposal." + response,
			Data:   updated,
		})
	}

	return updated, nil
}

// CreateRevision создаёт новую версию предложения поверх существующего.
// Исходное предложение не изменяется: ревизия это отдельный черновик
// со ссылкой на родителя и версией на единицу больше.
func (s *ProposalService) CreateRevision(ctx context.Context, parentID, userID uuid.UUID, revisionNotes *string) (*models.Proposal, error) {
	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.CreatedByID != userID {
		return nil, apperror.ErrForbidden
	}
	if parent.Status == models.ProposalStatusDraft {
		return nil, fmt.Errorf("proposal service: черновик можно редактировать напрямую, ревизия не нужна")
	}

	revision := &models.Proposal{
		Title:            parent.Title,
		TemplateID:       parent.TemplateID,
		ProjectID:        parent.ProjectID,
		ClientID:         parent.ClientID,
		ClientName:       parent.ClientName,
		ClientEmail:      parent.ClientEmail,
		Content:          parent.Content,
		Variables:        parent.Variables,
		Status:           models.ProposalStatusDraft,
		ExpiresAt:        s.now().AddDate(0, 0, s.expiryDays),
		Version:          parent.Version + 1,
		ParentProposalID: &parent.ID,
		RevisionNotes:    revisionNotes,
		CreatedByID:      parent.CreatedByID,
	}

	if err := s.repo.Create(ctx, revision); err != nil {
		return nil, err
	}

	return revision, nil
}

// DeleteProposal удаляет черновик. Отправленные предложения не удаляются.
func (s *ProposalService) DeleteProposal(ctx context.Context, id, userID uuid.UUID) error {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if proposal.CreatedByID != userID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
