package service

import (
	"context"
	"fmt"

	"akari/config"
	"akari/models"

	log "github.com/sirupsen/logrus"
)

type userService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the
// initial points balance
func (s *userService) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		initialPoints := s.config.Economy.StartingPoints
		user, err = uow.UserRepository().Create(ctx, telegramID, username, initialPoints)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		history := &models.PointsHistory{
			TelegramID:      telegramID,
			Currency:        models.CurrencyPoints,
			BalanceBefore:   0,
			BalanceAfter:    initialPoints,
			ChangeAmount:    initialPoints,
			TransactionType: models.TransactionTypeInitial,
			TransactionMetadata: map[string]any{
				"username": username,
			},
		}
		if err := RecordPointsChange(ctx, uow, history); err != nil {
			return nil, err
		}

		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"username":   username,
		}).Info("Created new user")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user, returning ErrNotFound if absent
func (s *userService) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// SetTonWallet updates the user's payout wallet address
func (s *userService) SetTonWallet(ctx context.Context, telegramID int64, wallet string) error {
	if wallet == "" {
		return fmt.Errorf("wallet address cannot be empty: %w", models.ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	if err := uow.UserRepository().UpdateTonWallet(ctx, telegramID, wallet); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetHistory returns the most recent ledger entries for a user
func (s *userService) GetHistory(ctx context.Context, telegramID int64, limit int) ([]*models.PointsHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.PointsHistoryRepository().GetByUser(ctx, telegramID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// ListUsers returns every user, oldest account first
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return users, nil
}
