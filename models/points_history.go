package models

import (
	"time"
)

// Currency identifies which of the two balances a ledger entry touched.
type Currency string

const (
	CurrencyPoints Currency = "points"
	CurrencyMyst   Currency = "myst"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial          TransactionType = "initial"
	TransactionTypeTaskReward       TransactionType = "task_reward"
	TransactionTypePredictionStake  TransactionType = "prediction_stake"
	TransactionTypePredictionPayout TransactionType = "prediction_payout"
	TransactionTypeMystBurn         TransactionType = "myst_burn"
	TransactionTypeAdminAward       TransactionType = "admin_award"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypePrediction RelatedType = "prediction"
	RelatedTypeReward     RelatedType = "reward"
	RelatedTypeCampaign   RelatedType = "campaign"
)

// PointsHistory represents a historical balance change on either ledger
type PointsHistory struct {
	ID                  int64           `db:"id"`
	TelegramID          int64           `db:"telegram_id"`
	Currency            Currency        `db:"currency"`
	BalanceBefore       float64         `db:"balance_before"`
	BalanceAfter        float64         `db:"balance_after"`
	ChangeAmount        float64         `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}
