package service

import (
	"context"
	"fmt"

	"akari/events"
	"akari/models"
)

// RecordPointsChange records a ledger entry and emits appropriate events.
// This is the single entry point for all balance changes in the system.
func RecordPointsChange(ctx context.Context, uow UnitOfWork, history *models.PointsHistory) error {
	// Record the ledger entry
	if err := uow.PointsHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	// Emit points change event (will be flushed after transaction commits)
	event := events.PointsChangeEvent{
		TelegramID:      history.TelegramID,
		Currency:        history.Currency,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	uow.EventBus().Publish(event)

	// Also emit user created event if this is an initial balance
	if history.TransactionType == models.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			userCreatedEvent := events.UserCreatedEvent{
				TelegramID:    history.TelegramID,
				Username:      username,
				InitialPoints: history.BalanceAfter,
			}
			uow.EventBus().Publish(userCreatedEvent)
		}
	}

	return nil
}

// applyTier recomputes a user's tier from their points balance and persists
// the change when the threshold was crossed. Must run inside the same
// transaction that moved the balance.
func applyTier(ctx context.Context, uow UnitOfWork, user *models.User) error {
	newTier := models.TierForPoints(user.Points, models.DefaultTierBands)
	if newTier == user.Tier {
		return nil
	}

	if err := uow.UserRepository().UpdateTier(ctx, user.TelegramID, newTier); err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}

	uow.EventBus().Publish(events.TierChangedEvent{
		TelegramID: user.TelegramID,
		OldTier:    user.Tier,
		NewTier:    newTier,
		Points:     user.Points,
	})

	user.Tier = newTier
	return nil
}
