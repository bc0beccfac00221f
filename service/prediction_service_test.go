package service

import (
	"context"
	"testing"
	"time"

	"akari/config"
	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Economy: config.EconomyConfig{
			StartingPoints:      100,
			HouseFeeRate:        0.05,
			MystPerUSD:          10,
			PointsPerCompletion: 0.2,
			LeaderboardSize:     10,
			AdminTelegramIDs:    []int64{999},
		},
	}
}

func newPredictionMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockPointsHistoryRepository, *MockPredictionRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)
	mockPredictionRepo := new(MockPredictionRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, mockPredictionRepo, nil, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockUoW, mockFactory, mockUserRepo, mockHistoryRepo, mockPredictionRepo
}

func TestPredictionService_CreatePrediction(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, _, mockPredictionRepo := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	creator := &models.User{TelegramID: 999, Username: "admin", Points: 50}
	endsAt := time.Now().Add(24 * time.Hour)

	mockUserRepo.On("GetByTelegramID", ctx, int64(999)).Return(creator, nil)
	mockPredictionRepo.On("CreateWithOptions", ctx, mock.MatchedBy(func(p *models.Prediction) bool {
		return p.CreatorTelegramID == 999 && p.Question == "Will MYST hit $1?" && p.State == models.PredictionStateOpen
	}), mock.MatchedBy(func(opts []*models.PredictionOption) bool {
		return len(opts) == 2 && opts[0].Label == "Yes" && opts[1].OptionOrder == 1
	})).Return(nil)

	detail, err := service.CreatePrediction(ctx, 999, "Will MYST hit $1?", []string{"Yes", "No"}, endsAt)

	require.NoError(t, err)
	assert.Len(t, detail.Options, 2)
	assert.Empty(t, detail.Bets)
}

func TestPredictionService_CreatePrediction_Validation(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, _, _ := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	endsAt := time.Now().Add(time.Hour)

	t.Run("empty question", func(t *testing.T) {
		_, err := service.CreatePrediction(ctx, 123, "", []string{"Yes", "No"}, endsAt)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("too few options", func(t *testing.T) {
		_, err := service.CreatePrediction(ctx, 123, "q", []string{"Yes"}, endsAt)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("window in the past", func(t *testing.T) {
		_, err := service.CreatePrediction(ctx, 123, "q", []string{"Yes", "No"}, time.Now().Add(-time.Hour))
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("non-admin creator", func(t *testing.T) {
		_, err := service.CreatePrediction(ctx, 123, "q", []string{"Yes", "No"}, endsAt)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestPredictionService_PlaceBet(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, mockHistoryRepo, mockPredictionRepo := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	prediction := &models.Prediction{
		ID:     1,
		State:  models.PredictionStateOpen,
		EndsAt: time.Now().Add(time.Hour),
	}
	detail := &models.PredictionDetail{
		Prediction: prediction,
		Options: []*models.PredictionOption{
			{ID: 10, PredictionID: 1, Label: "Yes"},
			{ID: 11, PredictionID: 1, Label: "No"},
		},
	}
	user := &models.User{TelegramID: 123, Points: 500, Tier: models.TierSilver}

	mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
	mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)
	mockPredictionRepo.On("GetBetByUser", ctx, int64(1), int64(123)).Return(nil, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyPoints, float64(300)).Return(nil)
	mockPredictionRepo.On("CreateBet", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.PredictionID == 1 && b.TelegramID == 123 && b.OptionID == 10 && b.Amount == 200
	})).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.TelegramID == 123 &&
			h.BalanceBefore == 500 &&
			h.BalanceAfter == 300 &&
			h.ChangeAmount == -200 &&
			h.TransactionType == models.TransactionTypePredictionStake
	})).Return(nil)
	// Dropping from 500 to 300 crosses the silver/gold boundary downward
	mockUserRepo.On("UpdateTier", ctx, int64(123), models.TierSilver).Maybe().Return(nil)

	bet, err := service.PlaceBet(ctx, 1, 123, 10, 200, models.CurrencyPoints)

	require.NoError(t, err)
	assert.Equal(t, int64(200), bet.Amount)
	mockPredictionRepo.AssertExpectations(t)
}

func TestPredictionService_PlaceBet_MystStake(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, mockHistoryRepo, mockPredictionRepo := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, EndsAt: time.Now().Add(time.Hour)}
	detail := &models.PredictionDetail{
		Prediction: prediction,
		Options:    []*models.PredictionOption{{ID: 10, PredictionID: 1}},
	}
	user := &models.User{TelegramID: 123, Points: 500, MystBalance: 30, Tier: models.TierSilver}

	mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
	mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)
	mockPredictionRepo.On("GetBetByUser", ctx, int64(1), int64(123)).Return(nil, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(user, nil)
	// The MYST balance is debited; points and tier stay untouched
	mockUserRepo.On("UpdateBalance", ctx, int64(123), models.CurrencyMyst, float64(10)).Return(nil)
	mockPredictionRepo.On("CreateBet", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Currency == models.CurrencyMyst && b.Amount == 20
	})).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.Currency == models.CurrencyMyst && h.ChangeAmount == -20
	})).Return(nil)

	bet, err := service.PlaceBet(ctx, 1, 123, 10, 20, models.CurrencyMyst)

	require.NoError(t, err)
	assert.Equal(t, models.CurrencyMyst, bet.Currency)
	mockUserRepo.AssertNotCalled(t, "UpdateTier", mock.Anything, mock.Anything, mock.Anything)
}

func TestPredictionService_PlaceBet_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient balance", func(t *testing.T) {
		_, mockFactory, mockUserRepo, _, mockPredictionRepo := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, EndsAt: time.Now().Add(time.Hour)}
		detail := &models.PredictionDetail{
			Prediction: prediction,
			Options:    []*models.PredictionOption{{ID: 10, PredictionID: 1}},
		}

		mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
		mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)
		mockPredictionRepo.On("GetBetByUser", ctx, int64(1), int64(123)).Return(nil, nil)
		mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(123)).Return(&models.User{TelegramID: 123, Points: 50}, nil)

		_, err := service.PlaceBet(ctx, 1, 123, 10, 200, models.CurrencyPoints)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	})

	t.Run("expired window", func(t *testing.T) {
		_, mockFactory, _, _, mockPredictionRepo := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, EndsAt: time.Now().Add(-time.Minute)}
		mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)

		_, err := service.PlaceBet(ctx, 1, 123, 10, 200, models.CurrencyPoints)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("duplicate bet", func(t *testing.T) {
		_, mockFactory, _, _, mockPredictionRepo := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, EndsAt: time.Now().Add(time.Hour)}
		detail := &models.PredictionDetail{
			Prediction: prediction,
			Options:    []*models.PredictionOption{{ID: 10, PredictionID: 1}},
		}

		mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
		mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)
		mockPredictionRepo.On("GetBetByUser", ctx, int64(1), int64(123)).Return(&models.Bet{ID: 5}, nil)

		_, err := service.PlaceBet(ctx, 1, 123, 10, 200, models.CurrencyPoints)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("wrong option", func(t *testing.T) {
		_, mockFactory, _, _, mockPredictionRepo := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, EndsAt: time.Now().Add(time.Hour)}
		detail := &models.PredictionDetail{
			Prediction: prediction,
			Options:    []*models.PredictionOption{{ID: 10, PredictionID: 1}},
		}

		mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
		mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)

		_, err := service.PlaceBet(ctx, 1, 123, 77, 200, models.CurrencyPoints)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})
}

func TestPredictionService_ResolvePrediction(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, mockHistoryRepo, mockPredictionRepo := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	// Pot of 1000: fee is 50, pool 950. Winning stakes 300 and 100 (total
	// 400) pay 712 and 237; the 1 point rounding loss stays with the house.
	prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, TotalPot: 1000, EndsAt: time.Now().Add(-time.Minute)}
	detail := &models.PredictionDetail{
		Prediction: prediction,
		Options: []*models.PredictionOption{
			{ID: 10, PredictionID: 1, Label: "Yes", TotalStaked: 400},
			{ID: 11, PredictionID: 1, Label: "No", TotalStaked: 600},
		},
		Bets: []*models.Bet{
			{ID: 1, PredictionID: 1, TelegramID: 100, OptionID: 10, Amount: 300},
			{ID: 2, PredictionID: 1, TelegramID: 200, OptionID: 10, Amount: 100},
			{ID: 3, PredictionID: 1, TelegramID: 300, OptionID: 11, Amount: 600},
		},
	}

	mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
	mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)

	mockPredictionRepo.On("UpdateBetPayout", ctx, int64(1), int64(712)).Return(nil)
	mockPredictionRepo.On("UpdateBetPayout", ctx, int64(2), int64(237)).Return(nil)

	winner1 := &models.User{TelegramID: 100, Points: 10, Tier: models.TierBronze}
	winner2 := &models.User{TelegramID: 200, Points: 20, Tier: models.TierBronze}
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(100)).Return(winner1, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(200)).Return(winner2, nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(100), models.CurrencyPoints, float64(722)).Return(nil)
	mockUserRepo.On("UpdateBalance", ctx, int64(200), models.CurrencyPoints, float64(257)).Return(nil)
	mockUserRepo.On("UpdateTier", ctx, int64(100), models.TierGold).Return(nil)
	mockUserRepo.On("UpdateTier", ctx, int64(200), models.TierSilver).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.PointsHistory) bool {
		return h.TransactionType == models.TransactionTypePredictionPayout
	})).Return(nil).Twice()

	mockPredictionRepo.On("Resolve", ctx, int64(1), int64(10)).Return(nil)

	result, err := service.ResolvePrediction(ctx, 1, 999, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalPot)
	assert.Equal(t, int64(50), result.HouseFee)
	assert.Equal(t, int64(950), result.PayoutPool)
	assert.Equal(t, int64(712), result.Payouts[100])
	assert.Equal(t, int64(237), result.Payouts[200])
	assert.Len(t, result.Winners, 2)
	mockPredictionRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestPredictionService_ResolvePrediction_NoWinners(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, _, mockPredictionRepo := newPredictionMocks()
	service := NewPredictionService(mockFactory, testConfig())

	// Nobody backed the winning option: the resolution still succeeds and
	// the whole pool stays with the house.
	prediction := &models.Prediction{ID: 1, State: models.PredictionStateOpen, TotalPot: 600, EndsAt: time.Now().Add(-time.Minute)}
	detail := &models.PredictionDetail{
		Prediction: prediction,
		Options: []*models.PredictionOption{
			{ID: 10, PredictionID: 1, TotalStaked: 0},
			{ID: 11, PredictionID: 1, TotalStaked: 600},
		},
		Bets: []*models.Bet{
			{ID: 3, PredictionID: 1, TelegramID: 300, OptionID: 11, Amount: 600},
		},
	}

	mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)
	mockPredictionRepo.On("GetDetailByID", ctx, int64(1)).Return(detail, nil)
	mockPredictionRepo.On("Resolve", ctx, int64(1), int64(10)).Return(nil)

	result, err := service.ResolvePrediction(ctx, 1, 999, 10)

	require.NoError(t, err)
	assert.Empty(t, result.Winners)
	assert.Empty(t, result.Payouts)
	assert.Equal(t, int64(30), result.HouseFee)
}

func TestPredictionService_ResolvePrediction_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not a resolver", func(t *testing.T) {
		_, mockFactory, _, _, _ := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		_, err := service.ResolvePrediction(ctx, 1, 123, 10)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("already resolved", func(t *testing.T) {
		_, mockFactory, _, _, mockPredictionRepo := newPredictionMocks()
		service := NewPredictionService(mockFactory, testConfig())

		prediction := &models.Prediction{ID: 1, State: models.PredictionStateResolved}
		mockPredictionRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(prediction, nil)

		_, err := service.ResolvePrediction(ctx, 1, 999, 10)
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})
}
