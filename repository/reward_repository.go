package repository

import (
	"context"
	"fmt"
	"time"

	"akari/database"
	"akari/models"

	"github.com/jackc/pgx/v5"
)

// RewardRepository implements the RewardRepository interface
type RewardRepository struct {
	q queryable
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{q: db.Pool}
}

// newRewardRepositoryWithTx creates a new reward repository with a transaction
func newRewardRepositoryWithTx(tx queryable) *RewardRepository {
	return &RewardRepository{q: tx}
}

const rewardColumns = `id, telegram_id, week_start, rank, usd_amount, burned_myst, status, ton_wallet, created_at, claimed_at, paid_at`

func scanReward(row pgx.Row) (*models.Reward, error) {
	var reward models.Reward
	err := row.Scan(
		&reward.ID,
		&reward.TelegramID,
		&reward.WeekStart,
		&reward.Rank,
		&reward.UsdAmount,
		&reward.BurnedMyst,
		&reward.Status,
		&reward.TonWallet,
		&reward.CreatedAt,
		&reward.ClaimedAt,
		&reward.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// Create records a new weekly prize
func (r *RewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	query := `
		INSERT INTO rewards (telegram_id, week_start, rank, usd_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		reward.TelegramID,
		reward.WeekStart,
		reward.Rank,
		reward.UsdAmount,
		reward.Status,
	).Scan(&reward.ID, &reward.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reward for user %d: %w", reward.TelegramID, err)
	}

	return nil
}

// GetByID retrieves a reward by ID
func (r *RewardRepository) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	query := fmt.Sprintf(`SELECT %s FROM rewards WHERE id = $1`, rewardColumns)

	reward, err := scanReward(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward %d: %w", id, err)
	}

	return reward, nil
}

// GetByIDForUpdate retrieves a reward with a row lock so the claim check
// holds until the transaction ends
func (r *RewardRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Reward, error) {
	query := fmt.Sprintf(`SELECT %s FROM rewards WHERE id = $1 FOR UPDATE`, rewardColumns)

	reward, err := scanReward(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reward %d: %w", id, err)
	}

	return reward, nil
}

// GetByUser returns all rewards for a user, newest week first
func (r *RewardRepository) GetByUser(ctx context.Context, telegramID int64) ([]*models.Reward, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rewards
		WHERE telegram_id = $1
		ORDER BY week_start DESC
	`, rewardColumns)

	return r.queryRewards(ctx, query, telegramID)
}

// GetByStatus returns all rewards with the given status
func (r *RewardRepository) GetByStatus(ctx context.Context, status models.RewardStatus) ([]*models.Reward, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rewards
		WHERE status = $1
		ORDER BY week_start DESC, rank
	`, rewardColumns)

	return r.queryRewards(ctx, query, status)
}

func (r *RewardRepository) queryRewards(ctx context.Context, query string, args ...any) ([]*models.Reward, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*models.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}

	return rewards, nil
}

// MarkClaimed transitions a reward to ready_for_payout with the burn
// amount and destination wallet recorded
func (r *RewardRepository) MarkClaimed(ctx context.Context, id int64, burnedMyst float64, tonWallet string, claimedAt time.Time) error {
	query := `
		UPDATE rewards
		SET status = $1, burned_myst = $2, ton_wallet = $3, claimed_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.q.Exec(ctx, query,
		models.RewardStatusReadyForPayout,
		burnedMyst,
		tonWallet,
		claimedAt,
		id,
		models.RewardStatusPendingBurn,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reward %d claimed: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reward %d not claimable: %w", id, models.ErrInvalidState)
	}

	return nil
}

// MarkPaid transitions a reward to its terminal paid state
func (r *RewardRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	query := `
		UPDATE rewards
		SET status = $1, paid_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query,
		models.RewardStatusPaid,
		paidAt,
		id,
		models.RewardStatusReadyForPayout,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reward %d paid: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reward %d not ready for payout: %w", id, models.ErrInvalidState)
	}

	return nil
}
