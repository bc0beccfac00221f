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

type predictionService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewPredictionService creates a new prediction service
func NewPredictionService(uowFactory UnitOfWorkFactory, cfg *config.Config) PredictionService {
	return &predictionService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// CreatePrediction creates a new prediction with options
func (s *predictionService) CreatePrediction(ctx context.Context, creatorID int64, question string, options []string, endsAt time.Time) (*models.PredictionDetail, error) {
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty: %w", models.ErrInvalidArgument)
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("must provide at least 2 options: %w", models.ErrInvalidArgument)
	}
	if !endsAt.After(time.Now()) {
		return nil, fmt.Errorf("betting window must end in the future: %w", models.ErrInvalidArgument)
	}
	if !s.IsResolver(creatorID) {
		return nil, fmt.Errorf("user %d cannot create predictions: %w", creatorID, models.ErrUnauthorized)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	creator, err := uow.UserRepository().GetByTelegramID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("creator %d: %w", creatorID, models.ErrNotFound)
	}

	prediction := &models.Prediction{
		CreatorTelegramID: creatorID,
		Question:          question,
		State:             models.PredictionStateOpen,
		TotalPot:          0,
		EndsAt:            endsAt,
	}

	var predictionOptions []*models.PredictionOption
	for i, label := range options {
		predictionOptions = append(predictionOptions, &models.PredictionOption{
			Label:       label,
			OptionOrder: int16(i),
			TotalStaked: 0,
		})
	}

	if err := uow.PredictionRepository().CreateWithOptions(ctx, prediction, predictionOptions); err != nil {
		return nil, fmt.Errorf("failed to create prediction with options: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"predictionID": prediction.ID,
		"creatorID":    creatorID,
		"optionCount":  len(options),
	}).Info("Created prediction")

	return &models.PredictionDetail{
		Prediction: prediction,
		Options:    predictionOptions,
		Bets:       []*models.Bet{},
	}, nil
}

// PlaceBet stakes points on a prediction option. Each user may bet once
// per prediction and bets are immutable.
func (s *predictionService) PlaceBet(ctx context.Context, predictionID, telegramID, optionID int64, amount int64, currency models.Currency) (*models.Bet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bet amount must be positive: %w", models.ErrInvalidArgument)
	}
	if currency != models.CurrencyPoints && currency != models.CurrencyMyst {
		return nil, fmt.Errorf("unknown currency %q: %w", currency, models.ErrInvalidArgument)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the prediction row so the open check holds until commit
	prediction, err := uow.PredictionRepository().GetByIDForUpdate(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("prediction %d: %w", predictionID, models.ErrNotFound)
	}
	if !prediction.CanAcceptBets() {
		return nil, fmt.Errorf("prediction %d is not accepting bets: %w", predictionID, models.ErrInvalidState)
	}

	detail, err := uow.PredictionRepository().GetDetailByID(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction detail: %w", err)
	}
	if detail.Option(optionID) == nil {
		return nil, fmt.Errorf("option %d does not belong to prediction %d: %w", optionID, predictionID, models.ErrInvalidArgument)
	}

	existing, err := uow.PredictionRepository().GetBetByUser(ctx, predictionID, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bet: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user %d already bet on prediction %d: %w", telegramID, predictionID, models.ErrInvalidState)
	}

	user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, models.ErrNotFound)
	}
	balance := user.Points
	if currency == models.CurrencyMyst {
		balance = user.MystBalance
	}
	if balance < float64(amount) {
		return nil, fmt.Errorf("have %.1f %s, need %d: %w", balance, currency, amount, models.ErrInsufficientBalance)
	}

	newBalance := balance - float64(amount)
	if err := uow.UserRepository().UpdateBalance(ctx, telegramID, currency, newBalance); err != nil {
		return nil, err
	}

	bet := &models.Bet{
		PredictionID: predictionID,
		TelegramID:   telegramID,
		OptionID:     optionID,
		Amount:       amount,
		Currency:     currency,
	}
	if err := uow.PredictionRepository().CreateBet(ctx, bet); err != nil {
		return nil, err
	}

	relatedID := predictionID
	relatedType := models.RelatedTypePrediction
	history := &models.PointsHistory{
		TelegramID:      telegramID,
		Currency:        currency,
		BalanceBefore:   balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    -float64(amount),
		TransactionType: models.TransactionTypePredictionStake,
		TransactionMetadata: map[string]any{
			"option_id": optionID,
		},
		RelatedID:   &relatedID,
		RelatedType: &relatedType,
	}
	if err := RecordPointsChange(ctx, uow, history); err != nil {
		return nil, err
	}

	// Tier tracks the points balance only
	if currency == models.CurrencyPoints {
		user.Points = newBalance
		if err := applyTier(ctx, uow, user); err != nil {
			return nil, err
		}
	} else {
		user.MystBalance = newBalance
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"predictionID": predictionID,
		"telegramID":   telegramID,
		"optionID":     optionID,
		"amount":       amount,
	}).Info("Placed bet")

	return bet, nil
}

// ResolvePrediction settles a prediction: the house retains its fee and
// winning bets split the remaining pot in proportion to their stakes, with
// each payout floor-rounded. When no bet backed the winning option the
// entire pool stays with the house and the resolution still succeeds.
func (s *predictionService) ResolvePrediction(ctx context.Context, predictionID, resolverID, winningOptionID int64) (*models.PredictionResult, error) {
	if !s.IsResolver(resolverID) {
		return nil, fmt.Errorf("user %d cannot resolve predictions: %w", resolverID, models.ErrUnauthorized)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Lock the prediction row so concurrent resolutions serialize
	prediction, err := uow.PredictionRepository().GetByIDForUpdate(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("prediction %d: %w", predictionID, models.ErrNotFound)
	}
	if !prediction.IsOpen() {
		return nil, fmt.Errorf("prediction %d already resolved: %w", predictionID, models.ErrInvalidState)
	}

	detail, err := uow.PredictionRepository().GetDetailByID(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction detail: %w", err)
	}

	winningOption := detail.Option(winningOptionID)
	if winningOption == nil {
		return nil, fmt.Errorf("option %d does not belong to prediction %d: %w", winningOptionID, predictionID, models.ErrInvalidArgument)
	}

	pot := prediction.TotalPot
	fee := models.HouseFee(pot, s.config.Economy.HouseFeeRate)
	payoutPool := pot - fee

	winners := detail.BetsByOption()[winningOptionID]
	winningTotal := winningOption.TotalStaked

	payouts := make(map[int64]int64)
	for _, bet := range winners {
		payout := bet.ProportionalPayout(winningTotal, payoutPool)
		payouts[bet.TelegramID] += payout

		if err := uow.PredictionRepository().UpdateBetPayout(ctx, bet.ID, payout); err != nil {
			return nil, err
		}

		if payout == 0 {
			continue
		}

		user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, bet.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to get winner %d: %w", bet.TelegramID, err)
		}
		if user == nil {
			return nil, fmt.Errorf("winner %d: %w", bet.TelegramID, models.ErrNotFound)
		}

		newBalance := user.Points + float64(payout)
		if err := uow.UserRepository().UpdateBalance(ctx, bet.TelegramID, models.CurrencyPoints, newBalance); err != nil {
			return nil, err
		}

		relatedID := predictionID
		relatedType := models.RelatedTypePrediction
		history := &models.PointsHistory{
			TelegramID:      bet.TelegramID,
			Currency:        models.CurrencyPoints,
			BalanceBefore:   user.Points,
			BalanceAfter:    newBalance,
			ChangeAmount:    float64(payout),
			TransactionType: models.TransactionTypePredictionPayout,
			TransactionMetadata: map[string]any{
				"stake":     bet.Amount,
				"option_id": winningOptionID,
			},
			RelatedID:   &relatedID,
			RelatedType: &relatedType,
		}
		if err := RecordPointsChange(ctx, uow, history); err != nil {
			return nil, err
		}

		user.Points = newBalance
		if err := applyTier(ctx, uow, user); err != nil {
			return nil, err
		}
	}

	if err := uow.PredictionRepository().Resolve(ctx, predictionID, winningOptionID); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PredictionResolvedEvent{
		PredictionID:    predictionID,
		WinningOptionID: winningOptionID,
		ResolverID:      resolverID,
		TotalPot:        pot,
		HouseFee:        fee,
		WinnerCount:     len(winners),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"predictionID":    predictionID,
		"winningOptionID": winningOptionID,
		"totalPot":        pot,
		"houseFee":        fee,
		"winnerCount":     len(winners),
	}).Info("Resolved prediction")

	now := time.Now()
	prediction.State = models.PredictionStateResolved
	prediction.WinningOptionID = &winningOptionID
	prediction.ResolvedAt = &now

	return &models.PredictionResult{
		Prediction:    prediction,
		WinningOption: winningOption,
		Winners:       winners,
		TotalPot:      pot,
		HouseFee:      fee,
		PayoutPool:    payoutPool,
		Payouts:       payouts,
	}, nil
}

// GetPredictionDetail retrieves full details of a prediction
func (s *predictionService) GetPredictionDetail(ctx context.Context, predictionID int64) (*models.PredictionDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.PredictionRepository().GetDetailByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("prediction %d: %w", predictionID, models.ErrNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return detail, nil
}

// ListOpenPredictions returns open predictions, newest first
func (s *predictionService) ListOpenPredictions(ctx context.Context, limit int) ([]*models.Prediction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	predictions, err := uow.PredictionRepository().ListByState(ctx, models.PredictionStateOpen, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return predictions, nil
}

// IsResolver checks if a user can resolve predictions
func (s *predictionService) IsResolver(telegramID int64) bool {
	return s.config.IsAdmin(telegramID)
}
