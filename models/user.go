package models

import (
	"time"
)

// User represents a Telegram user with point and MYST balances
type User struct {
	TelegramID  int64     `db:"telegram_id"`
	Username    string    `db:"username"`
	Points      float64   `db:"points"`
	Tier        Tier      `db:"tier"`
	MystBalance float64   `db:"myst_balance"`
	TonWallet   *string   `db:"ton_wallet"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
