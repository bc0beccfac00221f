package service

import (
	"context"
	"time"

	"akari/events"
	"akari/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByTelegramID retrieves a user by their Telegram ID
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// GetByTelegramIDForUpdate retrieves a user with a row lock for the
	// duration of the current transaction
	GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error)

	// Create creates a new user with the initial points balance
	Create(ctx context.Context, telegramID int64, username string, initialPoints float64) (*models.User, error)

	// UpdateBalance sets a user's balance for the given currency
	UpdateBalance(ctx context.Context, telegramID int64, currency models.Currency, newBalance float64) error

	// UpdateTier sets a user's tier
	UpdateTier(ctx context.Context, telegramID int64, tier models.Tier) error

	// UpdateTonWallet sets a user's TON wallet address
	UpdateTonWallet(ctx context.Context, telegramID int64, wallet string) error

	// GetByTelegramIDs returns users for the given IDs in a single query
	GetByTelegramIDs(ctx context.Context, telegramIDs []int64) (map[int64]*models.User, error)

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)
}

// PointsHistoryRepository defines the interface for ledger entries
type PointsHistoryRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, history *models.PointsHistory) error

	// GetByUser returns the most recent ledger entries for a user
	GetByUser(ctx context.Context, telegramID int64, limit int) ([]*models.PointsHistory, error)

	// TotalBurned returns the cumulative MYST burned across all users
	TotalBurned(ctx context.Context) (float64, error)
}

// PredictionRepository defines the interface for all prediction related data access
type PredictionRepository interface {
	// Core prediction operations
	CreateWithOptions(ctx context.Context, prediction *models.Prediction, options []*models.PredictionOption) error
	GetByID(ctx context.Context, id int64) (*models.Prediction, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Prediction, error)
	GetDetailByID(ctx context.Context, id int64) (*models.PredictionDetail, error)
	ListByState(ctx context.Context, state models.PredictionState, limit int) ([]*models.Prediction, error)
	Resolve(ctx context.Context, predictionID, winningOptionID int64) error

	// Bet operations
	CreateBet(ctx context.Context, bet *models.Bet) error
	GetBetByUser(ctx context.Context, predictionID, telegramID int64) (*models.Bet, error)
	GetBetsByPrediction(ctx context.Context, predictionID int64) ([]*models.Bet, error)
	UpdateBetPayout(ctx context.Context, betID int64, payout int64) error
}

// RewardRepository defines the interface for weekly prize data access
type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	GetByID(ctx context.Context, id int64) (*models.Reward, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Reward, error)
	GetByUser(ctx context.Context, telegramID int64) ([]*models.Reward, error)
	GetByStatus(ctx context.Context, status models.RewardStatus) ([]*models.Reward, error)
	MarkClaimed(ctx context.Context, id int64, burnedMyst float64, tonWallet string, claimedAt time.Time) error
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
}

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	CreateWithTasks(ctx context.Context, campaign *models.Campaign, tasks []*models.CampaignTask) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	GetDetailByID(ctx context.Context, id int64) (*models.CampaignDetail, error)
	GetTasks(ctx context.Context, campaignID int64) ([]*models.CampaignTask, error)
	GetTaskByID(ctx context.Context, taskID int64) (*models.CampaignTask, error)
	ListByState(ctx context.Context, state models.CampaignState) ([]*models.Campaign, error)
	UpdateState(ctx context.Context, id int64, from, to models.CampaignState) error

	// Completion operations
	CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error
	CountCompletionsByUser(ctx context.Context, campaignID int64) (map[int64]int, error)

	// Leaderboard snapshots
	SaveLeaderboardSnapshot(ctx context.Context, campaignID int64, entries []*models.LeaderboardEntry) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with
	// the initial points balance
	GetOrCreateUser(ctx context.Context, telegramID int64, username string) (*models.User, error)

	// GetUser retrieves a user, returning ErrNotFound if absent
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)

	// SetTonWallet updates the user's payout wallet address
	SetTonWallet(ctx context.Context, telegramID int64, wallet string) error

	// GetHistory returns the most recent ledger entries for a user
	GetHistory(ctx context.Context, telegramID int64, limit int) ([]*models.PointsHistory, error)

	// ListUsers returns every user for administrative inspection
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// PointsService defines the interface for ledger operations
type PointsService interface {
	// AwardTaskPoints credits points for a verified task completion and
	// recomputes the user's tier in the same transaction
	AwardTaskPoints(ctx context.Context, telegramID int64, campaignID, taskID int64) (*models.User, error)

	// AdminAward credits or debits points at an administrator's discretion
	AdminAward(ctx context.Context, telegramID int64, amount float64, reason string) (*models.User, error)
}

// PredictionService defines the interface for prediction market operations
type PredictionService interface {
	// CreatePrediction creates a new prediction with options
	CreatePrediction(ctx context.Context, creatorID int64, question string, options []string, endsAt time.Time) (*models.PredictionDetail, error)

	// PlaceBet stakes points or MYST on a prediction option
	PlaceBet(ctx context.Context, predictionID, telegramID, optionID int64, amount int64, currency models.Currency) (*models.Bet, error)

	// ResolvePrediction settles a prediction and distributes the pot
	ResolvePrediction(ctx context.Context, predictionID, resolverID, winningOptionID int64) (*models.PredictionResult, error)

	// GetPredictionDetail retrieves full details of a prediction
	GetPredictionDetail(ctx context.Context, predictionID int64) (*models.PredictionDetail, error)

	// ListOpenPredictions returns open predictions, newest first
	ListOpenPredictions(ctx context.Context, limit int) ([]*models.Prediction, error)

	// IsResolver checks if a user can resolve predictions
	IsResolver(telegramID int64) bool
}

// RewardService defines the interface for weekly prize operations
type RewardService interface {
	// GrantWeeklyRewards creates prizes for the given week's ranking
	GrantWeeklyRewards(ctx context.Context, weekStart time.Time, prizes []WeeklyPrize) ([]*models.Reward, error)

	// ListRewards returns a user's rewards with unpaid USD amounts withheld
	ListRewards(ctx context.Context, telegramID int64) ([]*RewardView, error)

	// ClaimReward burns the claimant's MYST and marks the reward ready for payout
	ClaimReward(ctx context.Context, rewardID, telegramID int64) (*ClaimResult, error)

	// ListPayoutQueue returns claimed rewards awaiting manual payout
	ListPayoutQueue(ctx context.Context) ([]*models.Reward, error)

	// MarkRewardPaid records an administrator's confirmation of payment
	MarkRewardPaid(ctx context.Context, rewardID int64) error

	// TotalBurned returns cumulative MYST burned across all users
	TotalBurned(ctx context.Context) (float64, error)
}

// LeaderboardService defines the interface for ranking operations
type LeaderboardService interface {
	// ComputeCampaignLeaderboard recomputes a campaign's ranking from raw
	// completion events and persists a snapshot. A non-positive limit uses
	// the configured default size.
	ComputeCampaignLeaderboard(ctx context.Context, campaignID int64, limit int) ([]*models.LeaderboardEntry, error)

	// ComputeGlobalLeaderboard recomputes the all-campaigns ranking
	ComputeGlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// CampaignService defines the interface for engagement campaign operations
type CampaignService interface {
	// CreateCampaign creates a draft campaign with its tasks
	CreateCampaign(ctx context.Context, creatorID int64, title, description string, pointsPerTask float64, taskTitles []string) (*models.CampaignDetail, error)

	// ActivateCampaign transitions a draft campaign to active
	ActivateCampaign(ctx context.Context, campaignID, actorID int64) error

	// CloseCampaign transitions an active campaign to closed
	CloseCampaign(ctx context.Context, campaignID, actorID int64) error

	// GetCampaignDetail retrieves a campaign with its tasks
	GetCampaignDetail(ctx context.Context, campaignID int64) (*models.CampaignDetail, error)

	// ListCampaigns returns campaigns in the given state
	ListCampaigns(ctx context.Context, state models.CampaignState) ([]*models.Campaign, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// UserRepository returns the user repository for this unit of work
	UserRepository() UserRepository

	// PointsHistoryRepository returns the ledger repository for this unit of work
	PointsHistoryRepository() PointsHistoryRepository

	// PredictionRepository returns the prediction repository for this unit of work
	PredictionRepository() PredictionRepository

	// RewardRepository returns the reward repository for this unit of work
	RewardRepository() RewardRepository

	// CampaignRepository returns the campaign repository for this unit of work
	CampaignRepository() CampaignRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
