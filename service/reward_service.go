package service

import (
	"context"
	"fmt"
	"time"

	"akari/config"
	"akari/events"
	"akari/models"

	log "github.com/sirupsen/logrus"
)

// WeeklyPrize is one rank's prize in a weekly grant
type WeeklyPrize struct {
	TelegramID int64
	Rank       int
	UsdAmount  float64
}

// RewardView is the claimant-facing projection of a reward. The USD amount
// is populated only once the reward is paid; before that the claimant sees
// just the burn requirement.
type RewardView struct {
	ID           int64               `json:"id"`
	WeekStart    time.Time           `json:"week_start"`
	Rank         int                 `json:"rank"`
	Status       models.RewardStatus `json:"status"`
	RequiredMyst float64             `json:"required_myst"`
	BurnedMyst   float64             `json:"burned_myst"`
	UsdAmount    *float64            `json:"usd_amount,omitempty"`
	ClaimedAt    *time.Time          `json:"claimed_at,omitempty"`
	PaidAt       *time.Time          `json:"paid_at,omitempty"`
}

// ClaimResult describes the outcome of a reward claim
type ClaimResult struct {
	RewardID    int64               `json:"reward_id"`
	BurnedMyst  float64             `json:"burned_myst"`
	MystBalance float64             `json:"myst_balance"`
	Status      models.RewardStatus `json:"status"`
}

type rewardService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewRewardService creates a new reward service
func NewRewardService(uowFactory UnitOfWorkFactory, cfg *config.Config) RewardService {
	return &rewardService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GrantWeeklyRewards creates prizes for the given week's ranking
func (s *rewardService) GrantWeeklyRewards(ctx context.Context, weekStart time.Time, prizes []WeeklyPrize) ([]*models.Reward, error) {
	if len(prizes) == 0 {
		return nil, fmt.Errorf("no prizes to grant: %w", models.ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var rewards []*models.Reward
	for _, prize := range prizes {
		if prize.UsdAmount <= 0 {
			return nil, fmt.Errorf("prize for user %d must be positive: %w", prize.TelegramID, models.ErrInvalidArgument)
		}

		reward := &models.Reward{
			TelegramID: prize.TelegramID,
			WeekStart:  weekStart,
			Rank:       prize.Rank,
			UsdAmount:  prize.UsdAmount,
			Status:     models.RewardStatusPendingBurn,
		}
		if err := uow.RewardRepository().Create(ctx, reward); err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"weekStart":  weekStart.Format("2006-01-02"),
		"prizeCount": len(prizes),
	}).Info("Granted weekly rewards")

	return rewards, nil
}

// ListRewards returns a user's rewards with unpaid USD amounts withheld
func (s *rewardService) ListRewards(ctx context.Context, telegramID int64) ([]*RewardView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.RewardRepository().GetByUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	views := make([]*RewardView, 0, len(rewards))
	for _, reward := range rewards {
		views = append(views, s.toView(reward))
	}

	return views, nil
}

// toView projects a reward for the claimant. Unpaid USD amounts stay
// internal; the claimant is shown only the burn requirement.
func (s *rewardService) toView(reward *models.Reward) *RewardView {
	view := &RewardView{
		ID:           reward.ID,
		WeekStart:    reward.WeekStart,
		Rank:         reward.Rank,
		Status:       reward.Status,
		RequiredMyst: reward.RequiredBurn(s.config.Economy.MystPerUSD),
		BurnedMyst:   reward.BurnedMyst,
		ClaimedAt:    reward.ClaimedAt,
		PaidAt:       reward.PaidAt,
	}
	if reward.IsPaid() {
		usd := reward.UsdAmount
		view.UsdAmount = &usd
	}
	return view
}

// ClaimReward burns the claimant's MYST and marks the reward ready for
// payout. The burn is capped at the claimant's balance: a short balance
// burns everything they hold, and a zero balance burns nothing. Either way
// the claim succeeds.
func (s *rewardService) ClaimReward(ctx context.Context, rewardID, telegramID int64) (*ClaimResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the reward row so concurrent claims serialize
	reward, err := uow.RewardRepository().GetByIDForUpdate(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if reward == nil || reward.TelegramID != telegramID {
		return nil, fmt.Errorf("reward %d: %w", rewardID, models.ErrNotFound)
	}
	if !reward.IsClaimable() {
		return nil, fmt.Errorf("reward %d already claimed: %w", rewardID, models.ErrInvalidState)
	}

	user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}
	if user.TonWallet == nil || *user.TonWallet == "" {
		return nil, fmt.Errorf("user %d has no payout wallet: %w", telegramID, models.ErrInvalidState)
	}

	required := reward.RequiredBurn(s.config.Economy.MystPerUSD)
	burn := required
	if burn > user.MystBalance {
		burn = user.MystBalance
	}
	// Floor protection: never take a holder below a whole token unless
	// that is all they have.
	if user.MystBalance > 0 && burn < 1 {
		burn = 1
		if burn > user.MystBalance {
			burn = user.MystBalance
		}
	}

	if burn > 0 {
		newBalance := user.MystBalance - burn
		if err := uow.UserRepository().UpdateBalance(ctx, telegramID, models.CurrencyMyst, newBalance); err != nil {
			return nil, err
		}

		relatedID := rewardID
		relatedType := models.RelatedTypeReward
		history := &models.PointsHistory{
			TelegramID:      telegramID,
			Currency:        models.CurrencyMyst,
			BalanceBefore:   user.MystBalance,
			BalanceAfter:    newBalance,
			ChangeAmount:    -burn,
			TransactionType: models.TransactionTypeMystBurn,
			TransactionMetadata: map[string]any{
				"required_myst": required,
			},
			RelatedID:   &relatedID,
			RelatedType: &relatedType,
		}
		if err := RecordPointsChange(ctx, uow, history); err != nil {
			return nil, err
		}

		user.MystBalance = newBalance
	}

	now := time.Now()
	if err := uow.RewardRepository().MarkClaimed(ctx, rewardID, burn, *user.TonWallet, now); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.RewardClaimedEvent{
		RewardID:   rewardID,
		TelegramID: telegramID,
		BurnedMyst: burn,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"rewardID":   rewardID,
		"telegramID": telegramID,
		"burnedMyst": burn,
	}).Info("Claimed reward")

	return &ClaimResult{
		RewardID:    rewardID,
		BurnedMyst:  burn,
		MystBalance: user.MystBalance,
		Status:      models.RewardStatusReadyForPayout,
	}, nil
}

// ListPayoutQueue returns claimed rewards awaiting manual payout. This is
// the administrator's worklist, so the full reward including the USD
// amount and payout wallet is returned.
func (s *rewardService) ListPayoutQueue(ctx context.Context) ([]*models.Reward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.RewardRepository().GetByStatus(ctx, models.RewardStatusReadyForPayout)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rewards, nil
}

// MarkRewardPaid records an administrator's confirmation of payment
func (s *rewardService) MarkRewardPaid(ctx context.Context, rewardID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	reward, err := uow.RewardRepository().GetByIDForUpdate(ctx, rewardID)
	if err != nil {
		return fmt.Errorf("failed to get reward: %w", err)
	}
	if reward == nil {
		return fmt.Errorf("reward %d: %w", rewardID, models.ErrNotFound)
	}

	if err := uow.RewardRepository().MarkPaid(ctx, rewardID, time.Now()); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TotalBurned returns cumulative MYST burned across all users
func (s *rewardService) TotalBurned(ctx context.Context) (float64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.PointsHistoryRepository().TotalBurned(ctx)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return total, nil
}
