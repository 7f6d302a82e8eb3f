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

type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) NextContractNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockContractRepo) Create(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) List(ctx context.Context, clientID *uuid.UUID, status string, limit, offset int) ([]models.Contract, error) {
	args := m.Called(ctx, clientID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *mockContractRepo) UpdateDraft(ctx context.Context, c *models.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockContractRepo) MarkSent(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) Transition(ctx context.Context, id uuid.UUID, from, to string, at time.Time) (*models.Contract, error) {
	args := m.Called(ctx, id, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) ListNeedsAttention(ctx context.Context, now time.Time) ([]models.Contract, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *mockContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestContractService_SignatureChain(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{models.ContractStatusSent, models.ContractStatusPartiallySigned},
		{models.ContractStatusViewed, models.ContractStatusPartiallySigned},
		{models.ContractStatusPendingSignature, models.ContractStatusPartiallySigned},
		{models.ContractStatusPartiallySigned, models.ContractStatusFullySigned},
		{models.ContractStatusFullySigned, models.ContractStatusExecuted},
	}

	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			repo := new(mockContractRepo)
			service := NewContractService(repo, new(mockClientLoader), nil)

			contractID := uuid.New()
			contract := &models.Contract{ID: contractID, Status: tc.from}
			updated := &models.Contract{ID: contractID, Status: tc.to}

			repo.On("GetByID", mock.Anything, contractID).Return(contract, nil)
			repo.On("Transition", mock.Anything, contractID, tc.from, tc.to, mock.AnythingOfType("time.Time")).Return(updated, nil)

			got, err := service.RecordSignature(context.Background(), contractID)

			assert.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
			repo.AssertExpectations(t)
		})
	}
}

func TestContractService_SignDraftConflicts(t *testing.T) {
	repo := new(mockContractRepo)
	service := NewContractService(repo, new(mockClientLoader), nil)

	contractID := uuid.New()
	draft := &models.Contract{ID: contractID, Status: models.ContractStatusDraft}
	repo.On("GetByID", mock.Anything, contractID).Return(draft, nil)

	_, err := service.RecordSignature(context.Background(), contractID)

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)
	repo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContractService_SignExecutedConflicts(t *testing.T) {
	repo := new(mockContractRepo)
	service := NewContractService(repo, new(mockClientLoader), nil)

	contractID := uuid.New()
	executed := &models.Contract{ID: contractID, Status: models.ContractStatusExecuted}
	repo.On("GetByID", mock.Anything, contractID).Return(executed, nil)

	_, err := service.RecordSignature(context.Background(), contractID)

	assert.Error(t, err)
}

func TestContractService_CreateComputesTotal(t *testing.T) {
	repo := new(mockContractRepo)
	clients := new(mockClientLoader)
	service := NewContractService(repo, clients, nil)

	clientID := uuid.New()
	clients.On("GetByID", mock.Anything, clientID).Return(&models.Client{ID: clientID}, nil)
	repo.On("NextContractNumber", mock.Anything).Return("CTR-000007", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Contract")).Return(nil)

	contract, err := service.CreateContract(context.Background(), ContractInput{
		Title:    "Retainer agreement",
		ClientID: clientID,
		Content:  "Terms and conditions.",
		LineItems: models.LineItems{
			{Description: "Monthly retainer", Quantity: 12, Rate: 1000},
			{Description: "Setup", Quantity: 1, Rate: 250.50},
		},
	}, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, "CTR-000007", contract.ContractNumber)
	assert.Equal(t, models.ContractStatusDraft, contract.Status)
	assert.Equal(t, 12250.50, contract.TotalAmount)
}

func TestContractService_NeedsAttentionModel(t *testing.T) {
	now := time.Now()
	soon := now.AddDate(0, 0, 15)
	far := now.AddDate(0, 0, 60)

	pending := &models.Contract{Status: models.ContractStatusPartiallySigned}
	assert.True(t, pending.NeedsAttention(now))

	expiringSigned := &models.Contract{Status: models.ContractStatusFullySigned, ExpirationDate: &soon}
	assert.True(t, expiringSigned.NeedsAttention(now))

	farSigned := &models.Contract{Status: models.ContractStatusFullySigned, ExpirationDate: &far}
	assert.False(t, farSigned.NeedsAttention(now))

	draft := &models.Contract{Status: models.ContractStatusDraft, ExpirationDate: &soon}
	assert.False(t, draft.NeedsAttention(now))
}
