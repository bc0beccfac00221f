package testutil

import (
	"time"

	"akari/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(telegramID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		TelegramID: telegramID,
		Username:   username,
		Points:     500,
		Tier:       models.TierSilver,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestUserWithPoints creates a test user with a specific points balance
func CreateTestUserWithPoints(telegramID int64, username string, points float64) *models.User {
	user := CreateTestUser(telegramID, username)
	user.Points = points
	user.Tier = models.TierForPoints(points, models.DefaultTierBands)
	return user
}

// CreateTestPointsHistory creates a test ledger entry
func CreateTestPointsHistory(telegramID int64, transactionType models.TransactionType) *models.PointsHistory {
	return &models.PointsHistory{
		TelegramID:      telegramID,
		Currency:        models.CurrencyPoints,
		BalanceBefore:   500,
		BalanceAfter:    400,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestPrediction creates an open prediction closing in 24 hours
func CreateTestPrediction(creatorID int64, question string) *models.Prediction {
	return &models.Prediction{
		CreatorTelegramID: creatorID,
		Question:          question,
		State:             models.PredictionStateOpen,
		TotalPot:          0,
		EndsAt:            time.Now().Add(24 * time.Hour),
		CreatedAt:         time.Now(),
	}
}

// CreateTestOptions creates prediction options with the given labels
func CreateTestOptions(labels ...string) []*models.PredictionOption {
	options := make([]*models.PredictionOption, 0, len(labels))
	for i, label := range labels {
		options = append(options, &models.PredictionOption{
			Label:       label,
			OptionOrder: int16(i),
		})
	}
	return options
}

// CreateTestBet creates a points-denominated bet
func CreateTestBet(predictionID, telegramID, optionID, amount int64) *models.Bet {
	return &models.Bet{
		PredictionID: predictionID,
		TelegramID:   telegramID,
		OptionID:     optionID,
		Amount:       amount,
		Currency:     models.CurrencyPoints,
		CreatedAt:    time.Now(),
	}
}

// CreateTestReward creates a pending reward for the current week
func CreateTestReward(telegramID int64, rank int, usdAmount float64) *models.Reward {
	return &models.Reward{
		TelegramID: telegramID,
		WeekStart:  time.Now().Truncate(24 * time.Hour),
		Rank:       rank,
		UsdAmount:  usdAmount,
		Status:     models.RewardStatusPendingBurn,
		CreatedAt:  time.Now(),
	}
}

// CreateTestCampaign creates a draft campaign
func CreateTestCampaign(creatorID int64, title string) *models.Campaign {
	return &models.Campaign{
		CreatorTelegramID: creatorID,
		Title:             title,
		Description:       "test campaign",
		PointsPerTask:     0.2,
		State:             models.CampaignStateDraft,
		CreatedAt:         time.Now(),
	}
}

// CreateTestTasks creates campaign tasks with the given titles
func CreateTestTasks(titles ...string) []*models.CampaignTask {
	tasks := make([]*models.CampaignTask, 0, len(titles))
	for i, title := range titles {
		tasks = append(tasks, &models.CampaignTask{
			Title:     title,
			TaskOrder: int16(i),
		})
	}
	return tasks
}
