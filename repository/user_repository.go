package repository

import (
	"context"
	"fmt"

	"akari/database"
	"akari/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `telegram_id, username, points, tier, myst_balance, ton_wallet, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.Points,
		&user.Tier,
		&user.MystBalance,
		&user.TonWallet,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTelegramID retrieves a user by their Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE telegram_id = $1`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// GetByTelegramIDForUpdate retrieves a user with a row lock for the duration
// of the current transaction
func (r *UserRepository) GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE telegram_id = $1 FOR UPDATE`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", telegramID, err)
	}

	return user, nil
}

// Create creates a new user with the initial points balance
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string, initialPoints float64) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (telegram_id, username, points, tier)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, userColumns)

	tier := models.TierForPoints(initialPoints, models.DefaultTierBands)

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID, username, initialPoints, tier))
	if err != nil {
		return nil, fmt.Errorf("failed to create user with telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// UpdateBalance sets a user's balance for the given currency
func (r *UserRepository) UpdateBalance(ctx context.Context, telegramID int64, currency models.Currency, newBalance float64) error {
	column := "points"
	if currency == models.CurrencyMyst {
		column = "myst_balance"
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`, column)

	result, err := r.q.Exec(ctx, query, newBalance, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update %s balance for user %d: %w", currency, telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	return nil
}

// UpdateTier sets a user's tier
func (r *UserRepository) UpdateTier(ctx context.Context, telegramID int64, tier models.Tier) error {
	query := `
		UPDATE users
		SET tier = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, tier, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update tier for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	return nil
}

// UpdateTonWallet sets a user's TON wallet address
func (r *UserRepository) UpdateTonWallet(ctx context.Context, telegramID int64, wallet string) error {
	query := `
		UPDATE users
		SET ton_wallet = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, wallet, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update wallet for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}

	return nil
}

// GetByTelegramIDs returns users for the given IDs in a single query
func (r *UserRepository) GetByTelegramIDs(ctx context.Context, telegramIDs []int64) (map[int64]*models.User, error) {
	if len(telegramIDs) == 0 {
		return map[int64]*models.User{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE telegram_id = ANY($1)`, userColumns)

	rows, err := r.q.Query(ctx, query, telegramIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by telegram IDs: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]*models.User, len(telegramIDs))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.TelegramID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetAll returns all users ordered by creation time
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
