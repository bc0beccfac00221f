package models

import (
	"math"
	"time"
)

// PredictionState represents the state of a prediction market
type PredictionState string

const (
	PredictionStateOpen     PredictionState = "open"
	PredictionStateResolved PredictionState = "resolved"
)

// Prediction represents a multi-option market with a staked pot
type Prediction struct {
	ID                int64           `db:"id"`
	CreatorTelegramID int64           `db:"creator_telegram_id"`
	Question          string          `db:"question"`
	State             PredictionState `db:"state"`
	WinningOptionID   *int64          `db:"winning_option_id"`
	TotalPot          int64           `db:"total_pot"`
	EndsAt            time.Time       `db:"ends_at"`
	CreatedAt         time.Time       `db:"created_at"`
	ResolvedAt        *time.Time      `db:"resolved_at"`
}

// PredictionOption represents a possible outcome for a prediction
type PredictionOption struct {
	ID           int64     `db:"id"`
	PredictionID int64     `db:"prediction_id"`
	Label        string    `db:"label"`
	OptionOrder  int16     `db:"option_order"`
	TotalStaked  int64     `db:"total_staked"`
	CreatedAt    time.Time `db:"created_at"`
}

// Bet is an immutable stake on a prediction option. Created once, never
// mutated after creation except for the payout recorded at settlement.
type Bet struct {
	ID           int64     `db:"id"`
	PredictionID int64     `db:"prediction_id"`
	TelegramID   int64     `db:"telegram_id"`
	OptionID     int64     `db:"option_id"`
	Amount       int64     `db:"amount"`
	Currency     Currency  `db:"currency"`
	Payout       *int64    `db:"payout"`
	CreatedAt    time.Time `db:"created_at"`
}

// PredictionDetail combines a prediction with its options and bets
type PredictionDetail struct {
	Prediction *Prediction
	Options    []*PredictionOption
	Bets       []*Bet
}

// PredictionResult represents the outcome of a settlement
type PredictionResult struct {
	Prediction    *Prediction
	WinningOption *PredictionOption
	Winners       []*Bet
	TotalPot      int64
	HouseFee      int64
	PayoutPool    int64
	Payouts       map[int64]int64 // Telegram ID -> total payout
}

// IsOpen checks if the prediction is still accepting bets
func (p *Prediction) IsOpen() bool {
	return p.State == PredictionStateOpen
}

// IsResolved checks if the prediction has been settled
func (p *Prediction) IsResolved() bool {
	return p.State == PredictionStateResolved
}

// IsExpired checks if the betting window has closed
func (p *Prediction) IsExpired() bool {
	return time.Now().After(p.EndsAt)
}

// CanAcceptBets checks if a bet may still be placed
func (p *Prediction) CanAcceptBets() bool {
	return p.IsOpen() && !p.IsExpired()
}

// HouseFee computes the fee retained from a pot at the given rate,
// floor-rounded.
func HouseFee(pot int64, feeRate float64) int64 {
	if pot <= 0 {
		return 0
	}
	return int64(math.Floor(float64(pot) * feeRate))
}

// ProportionalPayout computes this bet's floor-rounded share of the payout
// pool. Rounding loss is not redistributed; the shortfall stays with the
// house.
func (b *Bet) ProportionalPayout(winningTotal, payoutPool int64) int64 {
	if winningTotal == 0 {
		return 0
	}
	return b.Amount * payoutPool / winningTotal
}

// BetsByOption groups bets by their chosen option
func (pd *PredictionDetail) BetsByOption() map[int64][]*Bet {
	result := make(map[int64][]*Bet)
	for _, bet := range pd.Bets {
		result[bet.OptionID] = append(result[bet.OptionID], bet)
	}
	return result
}

// Option returns the option with the given ID, or nil if not configured
func (pd *PredictionDetail) Option(optionID int64) *PredictionOption {
	for _, opt := range pd.Options {
		if opt.ID == optionID {
			return opt
		}
	}
	return nil
}
