package service

import (
	"context"
	"fmt"

	"akari/config"
	"akari/models"

	log "github.com/sirupsen/logrus"
)

type pointsService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewPointsService creates a new points service
func NewPointsService(uowFactory UnitOfWorkFactory, cfg *config.Config) PointsService {
	return &pointsService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// AwardTaskPoints credits points for a verified task completion and
// recomputes the user's tier in the same transaction. The completion
// record's uniqueness constraint makes the award idempotent per task.
func (s *pointsService) AwardTaskPoints(ctx context.Context, telegramID int64, campaignID, taskID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	campaign, err := uow.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign %d: %w", campaignID, models.ErrNotFound)
	}
	if !campaign.IsActive() {
		return nil, fmt.Errorf("campaign %d is not active: %w", campaignID, models.ErrInvalidState)
	}

	task, err := uow.CampaignRepository().GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil || task.CampaignID != campaignID {
		return nil, fmt.Errorf("task %d: %w", taskID, models.ErrNotFound)
	}

	completion := &models.TaskCompletion{
		CampaignID: campaignID,
		TaskID:     taskID,
		TelegramID: telegramID,
	}
	if err := uow.CampaignRepository().CreateCompletion(ctx, completion); err != nil {
		return nil, err
	}

	amount := campaign.PointsPerTask
	newBalance := user.Points + amount
	if err := uow.UserRepository().UpdateBalance(ctx, telegramID, models.CurrencyPoints, newBalance); err != nil {
		return nil, err
	}

	relatedID := campaignID
	relatedType := models.RelatedTypeCampaign
	history := &models.PointsHistory{
		TelegramID:      telegramID,
		Currency:        models.CurrencyPoints,
		BalanceBefore:   user.Points,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTaskReward,
		TransactionMetadata: map[string]any{
			"task_id": taskID,
		},
		RelatedID:   &relatedID,
		RelatedType: &relatedType,
	}
	if err := RecordPointsChange(ctx, uow, history); err != nil {
		return nil, err
	}

	user.Points = newBalance
	if err := applyTier(ctx, uow, user); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"telegramID": telegramID,
		"campaignID": campaignID,
		"taskID":     taskID,
		"amount":     amount,
	}).Info("Awarded task points")

	return user, nil
}

// AdminAward credits or debits points at an administrator's discretion
func (s *pointsService) AdminAward(ctx context.Context, telegramID int64, amount float64, reason string) (*models.User, error) {
	if amount == 0 {
		return nil, fmt.Errorf("amount cannot be zero: %w", models.ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	newBalance := user.Points + amount
	if newBalance < 0 {
		return nil, fmt.Errorf("award would leave user %d negative: %w", telegramID, models.ErrInsufficientBalance)
	}

	if err := uow.UserRepository().UpdateBalance(ctx, telegramID, models.CurrencyPoints, newBalance); err != nil {
		return nil, err
	}

	history := &models.PointsHistory{
		TelegramID:      telegramID,
		Currency:        models.CurrencyPoints,
		BalanceBefore:   user.Points,
		BalanceAfter:    newBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeAdminAward,
		TransactionMetadata: map[string]any{
			"reason": reason,
		},
	}
	if err := RecordPointsChange(ctx, uow, history); err != nil {
		return nil, err
	}

	user.Points = newBalance
	if err := applyTier(ctx, uow, user); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}
