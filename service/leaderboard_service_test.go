package service

import (
	"context"
	"testing"

	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLeaderboardMocks() (*MockUnitOfWorkFactory, *MockUserRepository, *MockCampaignRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockCampaignRepo := new(MockCampaignRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockCampaignRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUserRepo, mockCampaignRepo
}

func TestLeaderboardService_ComputeCampaignLeaderboard(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockCampaignRepo := newLeaderboardMocks()
	service := NewLeaderboardService(mockFactory, testConfig())

	campaign := &models.Campaign{ID: 7, PointsPerTask: 0.2, State: models.CampaignStateActive}
	counts := map[int64]int{
		100: 5,
		200: 12,
		300: 5,
	}
	users := map[int64]*models.User{
		100: {TelegramID: 100, Username: "alice", Tier: models.TierSilver},
		200: {TelegramID: 200, Username: "bob", Tier: models.TierGold},
		300: {TelegramID: 300, Username: "carol", Tier: models.TierBronze},
	}

	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)
	mockCampaignRepo.On("CountCompletionsByUser", ctx, int64(7)).Return(counts, nil)
	mockUserRepo.On("GetByTelegramIDs", ctx, mock.AnythingOfType("[]int64")).Return(users, nil)
	mockCampaignRepo.On("SaveLeaderboardSnapshot", ctx, int64(7), mock.Anything).Return(nil)

	entries, err := service.ComputeCampaignLeaderboard(ctx, 7, 0)

	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(200), entries[0].TelegramID)
	assert.InDelta(t, 2.4, entries[0].Score, 1e-9)

	// Equal scores and counts break by Telegram ID for stable output
	assert.Equal(t, int64(100), entries[1].TelegramID)
	assert.Equal(t, int64(300), entries[2].TelegramID)
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, 3, entries[2].Rank)

	mockCampaignRepo.AssertExpectations(t)
}

func TestLeaderboardService_ComputeCampaignLeaderboard_TopN(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockCampaignRepo := newLeaderboardMocks()

	cfg := testConfig()
	cfg.Economy.LeaderboardSize = 2
	service := NewLeaderboardService(mockFactory, cfg)

	campaign := &models.Campaign{ID: 7, PointsPerTask: 0.2}
	counts := map[int64]int{100: 1, 200: 2, 300: 3}

	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)
	mockCampaignRepo.On("CountCompletionsByUser", ctx, int64(7)).Return(counts, nil)
	mockUserRepo.On("GetByTelegramIDs", ctx, mock.Anything).Return(map[int64]*models.User{}, nil)
	mockCampaignRepo.On("SaveLeaderboardSnapshot", ctx, int64(7), mock.MatchedBy(func(entries []*models.LeaderboardEntry) bool {
		return len(entries) == 2
	})).Return(nil)

	entries, err := service.ComputeCampaignLeaderboard(ctx, 7, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(300), entries[0].TelegramID)
	assert.Equal(t, int64(200), entries[1].TelegramID)
}

func TestLeaderboardService_ComputeCampaignLeaderboard_ExplicitLimit(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockCampaignRepo := newLeaderboardMocks()
	service := NewLeaderboardService(mockFactory, testConfig())

	campaign := &models.Campaign{ID: 7, PointsPerTask: 0.2}
	counts := map[int64]int{100: 1, 200: 2, 300: 3}

	mockCampaignRepo.On("GetByID", ctx, int64(7)).Return(campaign, nil)
	mockCampaignRepo.On("CountCompletionsByUser", ctx, int64(7)).Return(counts, nil)
	mockUserRepo.On("GetByTelegramIDs", ctx, mock.Anything).Return(map[int64]*models.User{}, nil)
	mockCampaignRepo.On("SaveLeaderboardSnapshot", ctx, int64(7), mock.Anything).Return(nil)

	// A caller-provided limit beats the configured default
	entries, err := service.ComputeCampaignLeaderboard(ctx, 7, 1)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(300), entries[0].TelegramID)
}

func TestLeaderboardService_ComputeCampaignLeaderboard_NotFound(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockCampaignRepo := newLeaderboardMocks()
	service := NewLeaderboardService(mockFactory, testConfig())

	mockCampaignRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	_, err := service.ComputeCampaignLeaderboard(ctx, 404, 0)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLeaderboardService_ComputeGlobalLeaderboard(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockCampaignRepo := newLeaderboardMocks()
	service := NewLeaderboardService(mockFactory, testConfig())

	counts := map[int64]int{100: 4}
	users := map[int64]*models.User{100: {TelegramID: 100, Username: "alice", Tier: models.TierSilver}}

	mockCampaignRepo.On("CountCompletionsByUser", ctx, int64(0)).Return(counts, nil)
	mockUserRepo.On("GetByTelegramIDs", ctx, mock.Anything).Return(users, nil)
	mockCampaignRepo.On("SaveLeaderboardSnapshot", ctx, int64(0), mock.Anything).Return(nil)

	entries, err := service.ComputeGlobalLeaderboard(ctx, 0)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 0.8, entries[0].Score, 1e-9)
}
