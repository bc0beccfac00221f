package repository

import (
	"context"
	"fmt"

	"akari/database"
	"akari/models"

	"github.com/jackc/pgx/v5"
)

// PredictionRepository implements all prediction related data access
type PredictionRepository struct {
	q queryable
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *database.DB) *PredictionRepository {
	return &PredictionRepository{q: db.Pool}
}

// newPredictionRepositoryWithTx creates a new prediction repository with a transaction
func newPredictionRepositoryWithTx(tx queryable) *PredictionRepository {
	return &PredictionRepository{q: tx}
}

// CreateWithOptions creates a new prediction with its options atomically
func (r *PredictionRepository) CreateWithOptions(ctx context.Context, prediction *models.Prediction, options []*models.PredictionOption) error {
	query := `
		INSERT INTO predictions (creator_telegram_id, question, state, total_pot, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		prediction.CreatorTelegramID,
		prediction.Question,
		prediction.State,
		prediction.TotalPot,
		prediction.EndsAt,
	).Scan(&prediction.ID, &prediction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	if len(options) > 0 {
		optionQuery := `
			INSERT INTO prediction_options (prediction_id, label, option_order, total_staked)
			VALUES
		`

		var args []interface{}
		for i, option := range options {
			if i > 0 {
				optionQuery += ","
			}
			paramIndex := i * 4
			optionQuery += fmt.Sprintf(" ($%d, $%d, $%d, $%d)",
				paramIndex+1, paramIndex+2, paramIndex+3, paramIndex+4)

			args = append(args,
				prediction.ID,
				option.Label,
				option.OptionOrder,
				option.TotalStaked,
			)
		}

		optionQuery += " RETURNING id, created_at"

		rows, err := r.q.Query(ctx, optionQuery, args...)
		if err != nil {
			return fmt.Errorf("failed to create prediction options: %w", err)
		}
		defer rows.Close()

		i := 0
		for rows.Next() {
			if i >= len(options) {
				return fmt.Errorf("unexpected number of rows returned")
			}
			err := rows.Scan(&options[i].ID, &options[i].CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to scan option ID: %w", err)
			}
			options[i].PredictionID = prediction.ID
			i++
		}
	}

	return nil
}

const predictionColumns = `id, creator_telegram_id, question, state, winning_option_id, total_pot, ends_at, created_at, resolved_at`

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	var p models.Prediction
	err := row.Scan(
		&p.ID,
		&p.CreatorTelegramID,
		&p.Question,
		&p.State,
		&p.WinningOptionID,
		&p.TotalPot,
		&p.EndsAt,
		&p.CreatedAt,
		&p.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a prediction by ID
func (r *PredictionRepository) GetByID(ctx context.Context, id int64) (*models.Prediction, error) {
	query := fmt.Sprintf(`SELECT %s FROM predictions WHERE id = $1`, predictionColumns)

	prediction, err := scanPrediction(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction %d: %w", id, err)
	}

	return prediction, nil
}

// GetByIDForUpdate retrieves a prediction with a row lock so state checks
// hold until the transaction ends
func (r *PredictionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Prediction, error) {
	query := fmt.Sprintf(`SELECT %s FROM predictions WHERE id = $1 FOR UPDATE`, predictionColumns)

	prediction, err := scanPrediction(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock prediction %d: %w", id, err)
	}

	return prediction, nil
}

// GetDetailByID retrieves a prediction with all its options and bets
func (r *PredictionRepository) GetDetailByID(ctx context.Context, id int64) (*models.PredictionDetail, error) {
	prediction, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prediction == nil {
		return nil, nil
	}

	options, err := r.getOptions(ctx, id)
	if err != nil {
		return nil, err
	}

	bets, err := r.GetBetsByPrediction(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.PredictionDetail{
		Prediction: prediction,
		Options:    options,
		Bets:       bets,
	}, nil
}

func (r *PredictionRepository) getOptions(ctx context.Context, predictionID int64) ([]*models.PredictionOption, error) {
	query := `
		SELECT id, prediction_id, label, option_order, total_staked, created_at
		FROM prediction_options
		WHERE prediction_id = $1
		ORDER BY option_order
	`

	rows, err := r.q.Query(ctx, query, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options for prediction %d: %w", predictionID, err)
	}
	defer rows.Close()

	var options []*models.PredictionOption
	for rows.Next() {
		var opt models.PredictionOption
		err := rows.Scan(&opt.ID, &opt.PredictionID, &opt.Label, &opt.OptionOrder, &opt.TotalStaked, &opt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}

	return options, nil
}

// ListByState returns predictions in the given state, newest first
func (r *PredictionRepository) ListByState(ctx context.Context, state models.PredictionState, limit int) ([]*models.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM predictions
		WHERE state = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, predictionColumns)

	rows, err := r.q.Query(ctx, query, state, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, prediction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

// CreateBet records a new stake and bumps the option and pot totals
func (r *PredictionRepository) CreateBet(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (prediction_id, telegram_id, option_id, amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.PredictionID,
		bet.TelegramID,
		bet.OptionID,
		bet.Amount,
		bet.Currency,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	_, err = r.q.Exec(ctx, `
		UPDATE prediction_options SET total_staked = total_staked + $1 WHERE id = $2
	`, bet.Amount, bet.OptionID)
	if err != nil {
		return fmt.Errorf("failed to update option total: %w", err)
	}

	_, err = r.q.Exec(ctx, `
		UPDATE predictions SET total_pot = total_pot + $1 WHERE id = $2
	`, bet.Amount, bet.PredictionID)
	if err != nil {
		return fmt.Errorf("failed to update prediction pot: %w", err)
	}

	return nil
}

// GetBetByUser returns a user's bet on a prediction, if any
func (r *PredictionRepository) GetBetByUser(ctx context.Context, predictionID, telegramID int64) (*models.Bet, error) {
	query := `
		SELECT id, prediction_id, telegram_id, option_id, amount, currency, payout, created_at
		FROM bets
		WHERE prediction_id = $1 AND telegram_id = $2
	`

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, predictionID, telegramID).Scan(
		&bet.ID,
		&bet.PredictionID,
		&bet.TelegramID,
		&bet.OptionID,
		&bet.Amount,
		&bet.Currency,
		&bet.Payout,
		&bet.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet for user %d on prediction %d: %w", telegramID, predictionID, err)
	}

	return &bet, nil
}

// GetBetsByPrediction returns all bets placed on a prediction
func (r *PredictionRepository) GetBetsByPrediction(ctx context.Context, predictionID int64) ([]*models.Bet, error) {
	query := `
		SELECT id, prediction_id, telegram_id, option_id, amount, currency, payout, created_at
		FROM bets
		WHERE prediction_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for prediction %d: %w", predictionID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.PredictionID,
			&bet.TelegramID,
			&bet.OptionID,
			&bet.Amount,
			&bet.Currency,
			&bet.Payout,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// UpdateBetPayout records the settled payout for a bet
func (r *PredictionRepository) UpdateBetPayout(ctx context.Context, betID int64, payout int64) error {
	query := `UPDATE bets SET payout = $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, payout, betID)
	if err != nil {
		return fmt.Errorf("failed to update payout for bet %d: %w", betID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d: %w", betID, models.ErrNotFound)
	}

	return nil
}

// Resolve marks a prediction settled with its winning option
func (r *PredictionRepository) Resolve(ctx context.Context, predictionID, winningOptionID int64) error {
	query := `
		UPDATE predictions
		SET state = $1, winning_option_id = $2, resolved_at = NOW()
		WHERE id = $3 AND state = $4
	`

	result, err := r.q.Exec(ctx, query,
		models.PredictionStateResolved,
		winningOptionID,
		predictionID,
		models.PredictionStateOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve prediction %d: %w", predictionID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("prediction %d not open: %w", predictionID, models.ErrInvalidState)
	}

	return nil
}
