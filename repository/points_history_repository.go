package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"akari/database"
	"akari/models"
)

// PointsHistoryRepository implements the PointsHistoryRepository interface
type PointsHistoryRepository struct {
	q queryable
}

// NewPointsHistoryRepository creates a new points history repository
func NewPointsHistoryRepository(db *database.DB) *PointsHistoryRepository {
	return &PointsHistoryRepository{q: db.Pool}
}

// newPointsHistoryRepositoryWithTx creates a new points history repository with a transaction
func newPointsHistoryRepositoryWithTx(tx queryable) *PointsHistoryRepository {
	return &PointsHistoryRepository{q: tx}
}

// Record creates a new ledger entry
func (r *PointsHistoryRepository) Record(ctx context.Context, history *models.PointsHistory) error {
	metadataJSON, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO points_history
		(telegram_id, currency, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		history.TelegramID,
		history.Currency,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadataJSON,
		history.RelatedID,
		history.RelatedType,
	).Scan(&history.ID, &history.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for user %d: %w", history.TelegramID, err)
	}

	return nil
}

// GetByUser returns the most recent ledger entries for a user
func (r *PointsHistoryRepository) GetByUser(ctx context.Context, telegramID int64, limit int) ([]*models.PointsHistory, error) {
	query := `
		SELECT id, telegram_id, currency, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM points_history
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for user %d: %w", telegramID, err)
	}
	defer rows.Close()

	var entries []*models.PointsHistory
	for rows.Next() {
		var entry models.PointsHistory
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.TelegramID,
			&entry.Currency,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadataJSON,
			&entry.RelatedID,
			&entry.RelatedType,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// TotalBurned returns the cumulative MYST burned across all users
func (r *PointsHistoryRepository) TotalBurned(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(-change_amount), 0)
		FROM points_history
		WHERE currency = $1 AND transaction_type = $2
	`

	var total float64
	err := r.q.QueryRow(ctx, query, models.CurrencyMyst, models.TransactionTypeMystBurn).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum burned myst: %w", err)
	}

	return total, nil
}
