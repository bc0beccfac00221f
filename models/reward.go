package models

import (
	"time"
)

// RewardStatus represents the lifecycle of a weekly leaderboard prize.
// pending_burn -> ready_for_payout -> paid; "paid" is administrator-set
// and terminal.
type RewardStatus string

const (
	RewardStatusPendingBurn    RewardStatus = "pending_burn"
	RewardStatusReadyForPayout RewardStatus = "ready_for_payout"
	RewardStatusPaid           RewardStatus = "paid"
)

// Reward represents a weekly leaderboard prize requiring a MYST burn to
// unlock. The USD amount must never be exposed to the claimant before the
// reward is paid; only the derived burn requirement is shown.
type Reward struct {
	ID         int64        `db:"id"`
	TelegramID int64        `db:"telegram_id"`
	WeekStart  time.Time    `db:"week_start"`
	Rank       int          `db:"rank"`
	UsdAmount  float64      `db:"usd_amount"`
	BurnedMyst float64      `db:"burned_myst"`
	Status     RewardStatus `db:"status"`
	TonWallet  *string      `db:"ton_wallet"`
	CreatedAt  time.Time    `db:"created_at"`
	ClaimedAt  *time.Time   `db:"claimed_at"`
	PaidAt     *time.Time   `db:"paid_at"`
}

// RequiredBurn converts the USD prize amount into the MYST burn threshold
// at the configured rate.
func (r *Reward) RequiredBurn(mystPerUSD float64) float64 {
	return r.UsdAmount * mystPerUSD
}

// IsClaimable checks if the reward is still awaiting its burn
func (r *Reward) IsClaimable() bool {
	return r.Status == RewardStatusPendingBurn
}

// IsPaid checks if the reward has reached its terminal state
func (r *Reward) IsPaid() bool {
	return r.Status == RewardStatusPaid
}
