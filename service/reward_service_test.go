package service

import (
	"context"
	"testing"
	"time"

	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRewardMocks() (*MockUnitOfWorkFactory, *MockUserRepository, *MockPointsHistoryRepository, *MockRewardRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)
	mockRewardRepo := new(MockRewardRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, nil, mockRewardRepo, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUserRepo, mockHistoryRepo, mockRewardRepo
}

func wallet(s string) *string { return &s }

func TestRewardService_ClaimReward_FullBurn(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockHistoryRepo, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	// $5 prize at 10 MYST per USD requires a 50 MYST burn
	reward := &models.Reward{ID: 1, TelegramID: 123, UsdAmount: 5, Status: models.RewardStatusPendingBurn}
	user := &models.User{TelegramID: 123, MystBalance: 80, TonWallet: wallet("UQabc")}

	mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyMyst, float64(30)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.Currency == models.CurrencyMyst &&
			h.ChangeAmount == -50 &&
			h.TransactionType == models.TransactionTypeMystBurn
	})).Return(nil)
	mockRewardRepo.On("MarkClaimed", ctx, int64(1), float64(50), "UQabc", mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.ClaimReward(ctx, 1, 123)

	require.NoError(t, err)
	assert.Equal(t, float64(50), result.BurnedMyst)
	assert.Equal(t, float64(30), result.MystBalance)
	assert.Equal(t, models.RewardStatusReadyForPayout, result.Status)
	mockRewardRepo.AssertExpectations(t)
}

func TestRewardService_ClaimReward_ShortBalanceBurnsEverything(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockHistoryRepo, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	reward := &models.Reward{ID: 1, TelegramID: 123, UsdAmount: 5, Status: models.RewardStatusPendingBurn}
	user := &models.User{TelegramID: 123, MystBalance: 12.5, TonWallet: wallet("UQabc")}

	mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyMyst, float64(0)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockRewardRepo.On("MarkClaimed", ctx, int64(1), float64(12.5), "UQabc", mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.ClaimReward(ctx, 1, 123)

	require.NoError(t, err)
	assert.Equal(t, float64(12.5), result.BurnedMyst)
	assert.Equal(t, float64(0), result.MystBalance)
}

func TestRewardService_ClaimReward_ZeroBalanceBurnsNothing(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, _, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	reward := &models.Reward{ID: 1, TelegramID: 123, UsdAmount: 5, Status: models.RewardStatusPendingBurn}
	user := &models.User{TelegramID: 123, MystBalance: 0, TonWallet: wallet("UQabc")}

	mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockRewardRepo.On("MarkClaimed", ctx, int64(1), float64(0), "UQabc", mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.ClaimReward(ctx, 1, 123)

	require.NoError(t, err)
	assert.Equal(t, float64(0), result.BurnedMyst)
	assert.Equal(t, models.RewardStatusReadyForPayout, result.Status)
}

func TestRewardService_ClaimReward_FloorProtection(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUserRepo, mockHistoryRepo, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	// A tiny prize would compute a sub-token burn; holders are charged at
	// least one whole token when they have it.
	reward := &models.Reward{ID: 1, TelegramID: 123, UsdAmount: 0.05, Status: models.RewardStatusPendingBurn}
	user := &models.User{TelegramID: 123, MystBalance: 40, TonWallet: wallet("UQabc")}

	mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyMyst, float64(39)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockRewardRepo.On("MarkClaimed", ctx, int64(1), float64(1), "UQabc", mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.ClaimReward(ctx, 1, 123)

	require.NoError(t, err)
	assert.Equal(t, float64(1), result.BurnedMyst)
}

func TestRewardService_ClaimReward_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not owner", func(t *testing.T) {
		mockFactory, _, _, mockRewardRepo := newRewardMocks()
		service := NewRewardService(mockFactory, testConfig())

		reward := &models.Reward{ID: 1, TelegramID: 456, Status: models.RewardStatusPendingBurn}
		mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)

		_, err := service.ClaimReward(ctx, 1, 123)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("already claimed", func(t *testing.T) {
		mockFactory, _, _, mockRewardRepo := newRewardMocks()
		service := NewRewardService(mockFactory, testConfig())

		reward := &models.Reward{ID: 1, TelegramID: 123, Status: models.RewardStatusReadyForPayout}
		mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)

		_, err := service.ClaimReward(ctx, 1, 123)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("no wallet", func(t *testing.T) {
		mockFactory, mockUserRepo, _, mockRewardRepo := newRewardMocks()
		service := NewRewardService(mockFactory, testConfig())

		reward := &models.Reward{ID: 1, TelegramID: 123, UsdAmount: 5, Status: models.RewardStatusPendingBurn}
		mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
		mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(&models.User{TelegramID: 123, MystBalance: 50}, nil)

		_, err := service.ClaimReward(ctx, 1, 123)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})
}

func TestRewardService_ListRewards_HidesUnpaidAmounts(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	now := time.Now()
	rewards := []*models.Reward{
		{ID: 1, TelegramID: 123, UsdAmount: 5, Status: models.RewardStatusPendingBurn},
		{ID: 2, TelegramID: 123, UsdAmount: 10, Status: models.RewardStatusReadyForPayout, BurnedMyst: 100},
		{ID: 3, TelegramID: 123, UsdAmount: 20, Status: models.RewardStatusPaid, PaidAt: &now},
	}

	mockRewardRepo.On("GetByUser", ctx, int64(123)).Return(rewards, nil)

	views, err := service.ListRewards(ctx, 123)

	require.NoError(t, err)
	require.Len(t, views, 3)

	// Unpaid rewards expose the burn requirement but never the prize value
	assert.Nil(t, views[0].UsdAmount)
	assert.Equal(t, float64(50), views[0].RequiredMyst)
	assert.Nil(t, views[1].UsdAmount)
	assert.Equal(t, float64(100), views[1].BurnedMyst)

	// Paid rewards show the amount
	require.NotNil(t, views[2].UsdAmount)
	assert.Equal(t, float64(20), *views[2].UsdAmount)
}

func TestRewardService_GrantWeeklyRewards(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	weekStart := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	prizes := []WeeklyPrize{
		{TelegramID: 100, Rank: 1, UsdAmount: 20},
		{TelegramID: 200, Rank: 2, UsdAmount: 10},
	}

	mockRewardRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Reward) bool {
		return r.Status == models.RewardStatusPendingBurn && r.WeekStart.Equal(weekStart)
	})).Return(nil).Twice()

	rewards, err := service.GrantWeeklyRewards(ctx, weekStart, prizes)

	require.NoError(t, err)
	assert.Len(t, rewards, 2)
	mockRewardRepo.AssertExpectations(t)
}

func TestRewardService_MarkRewardPaid(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	reward := &models.Reward{ID: 1, TelegramID: 123, Status: models.RewardStatusReadyForPayout}
	mockRewardRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(reward, nil)
	mockRewardRepo.On("MarkPaid", ctx, int64(1), mock.AnythingOfType("time.Time")).Return(nil)

	err := service.MarkRewardPaid(ctx, 1)

	require.NoError(t, err)
	mockRewardRepo.AssertExpectations(t)
}

func TestRewardService_ListPayoutQueue(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockRewardRepo := newRewardMocks()
	service := NewRewardService(mockFactory, testConfig())

	queued := []*models.Reward{
		{ID: 1, TelegramID: 100, UsdAmount: 20, BurnedMyst: 200, Status: models.RewardStatusReadyForPayout, TonWallet: wallet("UQabc")},
		{ID: 2, TelegramID: 200, UsdAmount: 10, BurnedMyst: 100, Status: models.RewardStatusReadyForPayout, TonWallet: wallet("UQdef")},
	}
	mockRewardRepo.On("GetByStatus", ctx, models.RewardStatusReadyForPayout).Return(queued, nil)

	rewards, err := service.ListPayoutQueue(ctx)

	require.NoError(t, err)
	require.Len(t, rewards, 2)
	// The admin worklist keeps the USD amounts and wallets intact
	assert.Equal(t, float64(20), rewards[0].UsdAmount)
	assert.Equal(t, "UQabc", *rewards[0].TonWallet)
	mockRewardRepo.AssertExpectations(t)
}
