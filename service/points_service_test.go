package service

import (
	"context"
	"testing"

	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPointsMocks() (*MockUnitOfWorkFactory, *MockUserRepository, *MockPointsHistoryRepository, *MockCampaignRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)
	mockCampaignRepo := new(MockCampaignRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, nil, nil, mockCampaignRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUserRepo, mockHistoryRepo, mockCampaignRepo
}

func TestPointsService_AwardTaskPoints(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockHistoryRepo, mockCampaignRepo := newPointsMocks()
	service := NewPointsService(mockFactory, testConfig())

	user := &models.User{TelegramID: 123, Points: 99.9, Tier: models.TierBronze}
	campaign := &models.Campaign{ID: 7, PointsPerTask: 0.2, State: models.CampaignStateActive}
	task := &models.CampaignTask{ID: 42, CampaignID: 7}

	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)
	mockCampaignRepo.On("GetTaskByID", ctx, int64(42)).Return(task, nil)
	mockCampaignRepo.On("CreateCompletion", ctx, mock.MatchedBy(func(c *models.TaskCompletion) bool {
		return c.CampaignID == 7 && c.TaskID == 42 && c.TelegramID == 123
	})).Return(nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyPoints, float64(100.1)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.TransactionType == models.TransactionTypeTaskReward &&
			h.ChangeAmount == 0.2 &&
			h.RelatedID != nil && *h.RelatedID == 7
	})).Return(nil)
	// Crossing 100 points moves bronze to silver in the same transaction
	mockUserRepo.On("UpdateTier", ctx, int64(123), models.TierSilver).Return(nil)

	updated, err := service.AwardTaskPoints(ctx, 123, 7, 42)

	require.NoError(t, err)
	assert.InDelta(t, 100.1, updated.Points, 1e-9)
	assert.Equal(t, models.TierSilver, updated.Tier)
	mockUserRepo.AssertExpectations(t)
}

func TestPointsService_AwardTaskPoints_InactiveCampaign(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, _, mockCampaignRepo := newPointsMocks()
	service := NewPointsService(mockFactory, testConfig())

	user := &models.User{TelegramID: 123, Points: 10}
	campaign := &models.Campaign{ID: 7, State: models.CampaignStateDraft}

	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)

	_, err := service.AwardTaskPoints(ctx, 123, 7, 42)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestPointsService_AwardTaskPoints_DuplicateCompletion(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, _, mockCampaignRepo := newPointsMocks()
	service := NewPointsService(mockFactory, testConfig())

	user := &models.User{TelegramID: 123, Points: 10}
	campaign := &models.Campaign{ID: 7, PointsPerTask: 0.2, State: models.CampaignStateActive}
	task := &models.CampaignTask{ID: 42, CampaignID: 7}

	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)
	mockCampaignRepo.On("GetTaskByID", ctx, int64(42)).Return(task, nil)
	mockCampaignRepo.On("CreateCompletion", ctx, mock.Anything).
		Return(models.ErrInvalidState)

	_, err := service.AwardTaskPoints(ctx, 123, 7, 42)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestPointsService_AdminAward(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockHistoryRepo, _ := newPointsMocks()
	service := NewPointsService(mockFactory, testConfig())

	user := &models.User{TelegramID: 123, Points: 50, Tier: models.TierBronze}

	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyPoints, float64(75)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.TransactionType == models.TransactionTypeAdminAward && h.ChangeAmount == 25
	})).Return(nil)

	updated, err := service.AdminAward(ctx, 123, 25, "contest bonus")

	require.NoError(t, err)
	assert.Equal(t, float64(75), updated.Points)
}

func TestPointsService_AdminAward_CannotGoNegative(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, _, _ := newPointsMocks()
	service := NewPointsService(mockFactory, testConfig())

	user := &models.User{TelegramID: 123, Points: 10}
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)

	_, err := service.AdminAward(ctx, 123, -25, "correction")
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
}
