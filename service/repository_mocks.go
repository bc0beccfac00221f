package service

import (
	"context"
	"time"

	"akari/events"
	"akari/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, telegramID int64, username string, initialPoints float64) (*models.User, error) {
	args := m.Called(ctx, telegramID, username, initialPoints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, telegramID int64, currency models.Currency, newBalance float64) error {
	args := m.Called(ctx, telegramID, currency, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTier(ctx context.Context, telegramID int64, tier models.Tier) error {
	args := m.Called(ctx, telegramID, tier)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTonWallet(ctx context.Context, telegramID int64, wallet string) error {
	args := m.Called(ctx, telegramID, wallet)
	return args.Error(0)
}

func (m *MockUserRepository) GetByTelegramIDs(ctx context.Context, telegramIDs []int64) (map[int64]*models.User, error) {
	args := m.Called(ctx, telegramIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockPointsHistoryRepository is a mock implementation of PointsHistoryRepository
type MockPointsHistoryRepository struct {
	mock.Mock
}

func (m *MockPointsHistoryRepository) Record(ctx context.Context, history *models.PointsHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockPointsHistoryRepository) GetByUser(ctx context.Context, telegramID int64, limit int) ([]*models.PointsHistory, error) {
	args := m.Called(ctx, telegramID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointsHistory), args.Error(1)
}

func (m *MockPointsHistoryRepository) TotalBurned(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

// MockPredictionRepository is a mock implementation of PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) CreateWithOptions(ctx context.Context, prediction *models.Prediction, options []*models.PredictionOption) error {
	args := m.Called(ctx, prediction, options)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id int64) (*models.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetDetailByID(ctx context.Context, id int64) (*models.PredictionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionDetail), args.Error(1)
}

func (m *MockPredictionRepository) ListByState(ctx context.Context, state models.PredictionState, limit int) ([]*models.Prediction, error) {
	args := m.Called(ctx, state, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) Resolve(ctx context.Context, predictionID, winningOptionID int64) error {
	args := m.Called(ctx, predictionID, winningOptionID)
	return args.Error(0)
}

func (m *MockPredictionRepository) CreateBet(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetBetByUser(ctx context.Context, predictionID, telegramID int64) (*models.Bet, error) {
	args := m.Called(ctx, predictionID, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockPredictionRepository) GetBetsByPrediction(ctx context.Context, predictionID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, predictionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockPredictionRepository) UpdateBetPayout(ctx context.Context, betID int64, payout int64) error {
	args := m.Called(ctx, betID, payout)
	return args.Error(0)
}

// MockRewardRepository is a mock implementation of RewardRepository
type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockRewardRepository) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Reward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetByUser(ctx context.Context, telegramID int64) ([]*models.Reward, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reward), args.Error(1)
}

func (m *MockRewardRepository) GetByStatus(ctx context.Context, status models.RewardStatus) ([]*models.Reward, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reward), args.Error(1)
}

func (m *MockRewardRepository) MarkClaimed(ctx context.Context, id int64, burnedMyst float64, tonWallet string, claimedAt time.Time) error {
	args := m.Called(ctx, id, burnedMyst, tonWallet, claimedAt)
	return args.Error(0)
}

func (m *MockRewardRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	args := m.Called(ctx, id, paidAt)
	return args.Error(0)
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) CreateWithTasks(ctx context.Context, campaign *models.Campaign, tasks []*models.CampaignTask) error {
	args := m.Called(ctx, campaign, tasks)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetDetailByID(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CampaignDetail), args.Error(1)
}

func (m *MockCampaignRepository) GetTasks(ctx context.Context, campaignID int64) ([]*models.CampaignTask, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CampaignTask), args.Error(1)
}

func (m *MockCampaignRepository) GetTaskByID(ctx context.Context, taskID int64) (*models.CampaignTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CampaignTask), args.Error(1)
}

func (m *MockCampaignRepository) ListByState(ctx context.Context, state models.CampaignState) ([]*models.Campaign, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) UpdateState(ctx context.Context, id int64, from, to models.CampaignState) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockCampaignRepository) CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error {
	args := m.Called(ctx, completion)
	return args.Error(0)
}

func (m *MockCampaignRepository) CountCompletionsByUser(ctx context.Context, campaignID int64) (map[int64]int, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockCampaignRepository) SaveLeaderboardSnapshot(ctx context.Context, campaignID int64, entries []*models.LeaderboardEntry) error {
	args := m.Called(ctx, campaignID, entries)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields so tests can wire in whichever mocks they need.
type MockUnitOfWork struct {
	mock.Mock

	userRepo       UserRepository
	historyRepo    PointsHistoryRepository
	predictionRepo PredictionRepository
	rewardRepo     RewardRepository
	campaignRepo   CampaignRepository
	eventBus       EventPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	historyRepo PointsHistoryRepository,
	predictionRepo PredictionRepository,
	rewardRepo RewardRepository,
	campaignRepo CampaignRepository,
) {
	m.userRepo = userRepo
	m.historyRepo = historyRepo
	m.predictionRepo = predictionRepo
	m.rewardRepo = rewardRepo
	m.campaignRepo = campaignRepo
	m.eventBus = &noopEventPublisher{}
}

// SetEventBus overrides the default no-op publisher
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) PointsHistoryRepository() PointsHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) PredictionRepository() PredictionRepository {
	return m.predictionRepo
}

func (m *MockUnitOfWork) RewardRepository() RewardRepository {
	return m.rewardRepo
}

func (m *MockUnitOfWork) CampaignRepository() CampaignRepository {
	return m.campaignRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(events.Event) {}
