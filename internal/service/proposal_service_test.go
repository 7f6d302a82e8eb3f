package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vsuitehq/gigster-backend/internal/models"
	"github.com/vsuitehq/gigster-backend/internal/pkg/apperror"
)

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	args := m.Called(ctx, p)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) GetByShareableLink(ctx context.Context, link string) (*models.Proposal, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) List(ctx context.Context, createdByID uuid.UUID, status string, limit, offset int) ([]models.Proposal, error) {
	args := m.Called(ctx, createdByID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) MarkSent(ctx context.Context, id uuid.UUID, link string) (*models.Proposal, error) {
	args := m.Called(ctx, id, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) MarkViewed(ctx context.Context, link string) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *mockProposalRepo) Respond(ctx context.Context, link, response string, message *string) (*models.Proposal, error) {
	args := m.Called(ctx, link, response, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateDraft(ctx context.Context, p *models.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProposalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTemplateLoader struct {
	mock.Mock
}

func (m *mockTemplateLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

type mockClientEnsurer struct {
	mock.Mock
}

func (m *mockClientEnsurer) EnsureClient(ctx context.Context, name, email string, createdBy uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, name, email, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func newProposalService(repo *mockProposalRepo, templates *mockTemplateLoader, clients *mockClientEnsurer) *ProposalService {
	return NewProposalService(repo, templates, clients, nil, nil, nil, "http://localhost:8080", 30)
}

func TestProposalService_CreateDraft(t *testing.T) {
	repo := new(mockProposalRepo)
	templates := new(mockTemplateLoader)
	clients := new(mockClientEnsurer)
	service := newProposalService(repo, templates, clients)

	userID := uuid.New()
	client := &models.Client{ID: uuid.New(), Name: "Acme LLC", Email: "billing@acme.com"}

	clients.On("EnsureClient", mock.Anything, "Acme LLC", "billing@acme.com", userID).Return(client, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Proposal")).Return(nil)

	proposal, err := service.CreateProposal(context.Background(), CreateProposalInput{
		Title:       "Website redesign",
		ClientName:  "Acme LLC",
		ClientEmail: "billing@acme.com",
		Content:     "# Scope\n\nFull redesign.",
	}, userID)

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusDraft, proposal.Status)
	assert.Equal(t, 1, proposal.Version)
	assert.Nil(t, proposal.ParentProposalID)
	assert.Equal(t, client.ID, *proposal.ClientID)
	assert.True(t, proposal.ExpiresAt.After(time.Now().AddDate(0, 0, 29)))
	repo.AssertExpectations(t)
	clients.AssertExpectations(t)
}

func TestProposalService_CreateRequiresContent(t *testing.T) {
	service := newProposalService(new(mockProposalRepo), new(mockTemplateLoader), new(mockClientEnsurer))

	_, err := service.CreateProposal(context.Background(), CreateProposalInput{
		Title:       "Empty proposal",
		ClientEmail: "client@example.com",
	}, uuid.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "контент")
}

func TestProposalService_SendKeepsExistingLink(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	userID := uuid.New()
	proposalID := uuid.New()
	existingLink := uuid.NewString()
	now := time.Now()

	draft := &models.Proposal{ID: proposalID, Status: models.ProposalStatusDraft, CreatedByID: userID}
	sent := &models.Proposal{
		ID:            proposalID,
		Status:        models.ProposalStatusSent,
		ShareableLink: &existingLink,
		SentAt:        &now,
		CreatedByID:   userID,
	}

	repo.On("GetByID", mock.Anything, proposalID).Return(draft, nil)
	// Репозиторий сохраняет уже выданную ссылку через COALESCE:
	// какой бы кандидат ни пришёл, вернётся existingLink.
	repo.On("MarkSent", mock.Anything, proposalID, mock.AnythingOfType("string")).Return(sent, nil)

	got, err := service.SendProposal(context.Background(), proposalID, userID, SendProposalInput{})

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusSent, got.Status)
	assert.Equal(t, existingLink, *got.ShareableLink)
	repo.AssertExpectations(t)
}

func TestProposalService_ResendKeepsViewedStatus(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	userID := uuid.New()
	proposalID := uuid.New()
	link := uuid.NewString()
	sentAt := time.Now().Add(-time.Hour)
	viewedAt := time.Now().Add(-30 * time.Minute)

	viewed := &models.Proposal{
		ID:            proposalID,
		Status:        models.ProposalStatusViewed,
		ShareableLink: &link,
		SentAt:        &sentAt,
		ViewedAt:      &viewedAt,
		CreatedByID:   userID,
	}

	repo.On("GetByID", mock.Anything, proposalID).Return(viewed, nil)
	// CASE в репозитории переводит в sent только из draft/sent:
	// повторная отправка просмотренного предложения не трогает статус.
	repo.On("MarkSent", mock.Anything, proposalID, mock.AnythingOfType("string")).Return(viewed, nil)

	got, err := service.SendProposal(context.Background(), proposalID, userID, SendProposalInput{})

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusViewed, got.Status)
	assert.Equal(t, link, *got.ShareableLink)
	assert.Equal(t, sentAt, *got.SentAt)
}

func TestProposalService_SendForeignProposalForbidden(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	proposalID := uuid.New()
	owner := uuid.New()
	draft := &models.Proposal{ID: proposalID, Status: models.ProposalStatusDraft, CreatedByID: owner}

	repo.On("GetByID", mock.Anything, proposalID).Return(draft, nil)

	_, err := service.SendProposal(context.Background(), proposalID, uuid.New(), SendProposalInput{})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestProposalService_ViewByLinkMarksFirstView(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	link := uuid.NewString()
	viewedAt := time.Now()
	viewed := &models.Proposal{
		ID:            uuid.New(),
		Status:        models.ProposalStatusViewed,
		ShareableLink: &link,
		ViewedAt:      &viewedAt,
	}

	repo.On("MarkViewed", mock.Anything, link).Return(nil)
	repo.On("GetByShareableLink", mock.Anything, link).Return(viewed, nil)

	proposal, err := service.ViewByLink(context.Background(), link)

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusViewed, proposal.Status)
	assert.NotNil(t, proposal.ViewedAt)
	repo.AssertCalled(t, "MarkViewed", mock.Anything, link)
}

func TestProposalService_ViewByLinkKeepsAcceptedStatus(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	link := uuid.NewString()
	viewedAt := time.Now().Add(-48 * time.Hour)
	accepted := &models.Proposal{
		ID:            uuid.New(),
		Status:        models.ProposalStatusAccepted,
		ShareableLink: &link,
		ViewedAt:      &viewedAt,
	}

	// Повторный просмотр уже принятого предложения не откатывает статус:
	// условный UPDATE в репозитории срабатывает только для статуса sent.
	repo.On("MarkViewed", mock.Anything, link).Return(nil)
	repo.On("GetByShareableLink", mock.Anything, link).Return(accepted, nil)

	proposal, err := service.ViewByLink(context.Background(), link)

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, proposal.Status)
	assert.Equal(t, viewedAt, *proposal.ViewedAt)
}

func TestProposalService_RespondAfterExpiry(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	link := uuid.NewString()
	expired := &models.Proposal{
		ID:            uuid.New(),
		Status:        models.ProposalStatusViewed,
		ShareableLink: &link,
		ExpiresAt:     time.Now().Add(-time.Hour),
	}

	repo.On("GetByShareableLink", mock.Anything, link).Return(expired, nil)

	_, err := service.Respond(context.Background(), link, models.ProposalStatusAccepted, nil)

	assert.ErrorIs(t, err, apperror.ErrProposalExpired)
	repo.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProposalService_RespondTwiceConflicts(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	link := uuid.NewString()
	accepted := &models.Proposal{
		ID:            uuid.New(),
		Status:        models.ProposalStatusAccepted,
		ShareableLink: &link,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	repo.On("GetByShareableLink", mock.Anything, link).Return(accepted, nil)

	_, err := service.Respond(context.Background(), link, models.ProposalStatusRejected, nil)

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
}

func TestProposalService_RespondRejectsUnknownResponse(t *testing.T) {
	service := newProposalService(new(mockProposalRepo), new(mockTemplateLoader), new(mockClientEnsurer))

	_, err := service.Respond(context.Background(), uuid.NewString(), "maybe", nil)

	assert.Error(t, err)
}

func TestProposalService_CreateRevision(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	userID := uuid.New()
	parentID := uuid.New()
	clientID := uuid.New()
	parent := &models.Proposal{
		ID:          parentID,
		Title:       "Website redesign",
		ClientID:    &clientID,
		ClientName:  "Acme LLC",
		ClientEmail: "billing@acme.com",
		Content:     "# Scope",
		Status:      models.ProposalStatusRevisionRequested,
		Version:     2,
		CreatedByID: userID,
	}

	repo.On("GetByID", mock.Anything, parentID).Return(parent, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Proposal")).Return(nil)

	notes := "Перенести сроки на март"
	revision, err := service.CreateRevision(context.Background(), parentID, userID, &notes)

	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusDraft, revision.Status)
	assert.Equal(t, 3, revision.Version)
	assert.Equal(t, parentID, *revision.ParentProposalID)
	assert.Equal(t, notes, *revision.RevisionNotes)
	// Родитель не изменился
	assert.Equal(t, models.ProposalStatusRevisionRequested, parent.Status)
	assert.Equal(t, 2, parent.Version)
}

func TestProposalService_RevisionOfDraftRejected(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	userID := uuid.New()
	parentID := uuid.New()
	draft := &models.Proposal{ID: parentID, Status: models.ProposalStatusDraft, CreatedByID: userID}

	repo.On("GetByID", mock.Anything, parentID).Return(draft, nil)

	_, err := service.CreateRevision(context.Background(), parentID, userID, nil)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProposalService_UpdateNonDraftConflicts(t *testing.T) {
	repo := new(mockProposalRepo)
	service := newProposalService(repo, new(mockTemplateLoader), new(mockClientEnsurer))

	userID := uuid.New()
	proposalID := uuid.New()
	sent := &models.Proposal{ID: proposalID, Status: models.ProposalStatusSent, CreatedByID: userID}

	repo.On("GetByID", mock.Anything, proposalID).Return(sent, nil)

	_, err := service.UpdateDraft(context.Background(), proposalID, UpdateProposalInput{Title: "New title"}, userID)

	assert.ErrorIs(t, err, apperror.ErrNotDraft)
	repo.AssertNotCalled(t, "UpdateDraft", mock.Anything, mock.Anything)
}
