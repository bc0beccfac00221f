package service

import (
	"context"
	"fmt"
	"sort"

	"akari/config"
	"akari/models"
)

type leaderboardService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory UnitOfWorkFactory, cfg *config.Config) LeaderboardService {
	return &leaderboardService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// ComputeCampaignLeaderboard recomputes a campaign's ranking from raw
// completion events and persists a snapshot
func (s *leaderboardService) ComputeCampaignLeaderboard(ctx context.Context, campaignID int64, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	campaign, err := uow.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign %d: %w", campaignID, models.ErrNotFound)
	}

	entries, err := s.compute(ctx, uow, campaignID, campaign.PointsPerTask, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.CampaignRepository().SaveLeaderboardSnapshot(ctx, campaignID, entries); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// ComputeGlobalLeaderboard recomputes the all-campaigns ranking
func (s *leaderboardService) ComputeGlobalLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := s.compute(ctx, uow, 0, s.config.Economy.PointsPerCompletion, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.CampaignRepository().SaveLeaderboardSnapshot(ctx, 0, entries); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// compute builds a ranking from completion counts. Scores are count times
// the per-task rate; ties break by count, then by Telegram ID, so repeated
// runs over the same data produce identical output.
func (s *leaderboardService) compute(ctx context.Context, uow UnitOfWork, campaignID int64, pointsPerTask float64, limit int) ([]*models.LeaderboardEntry, error) {
	counts, err := uow.CampaignRepository().CountCompletionsByUser(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(counts))
	for telegramID := range counts {
		ids = append(ids, telegramID)
	}

	// Single batch lookup for the display fields
	users, err := uow.UserRepository().GetByTelegramIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.LeaderboardEntry, 0, len(counts))
	for telegramID, count := range counts {
		entry := &models.LeaderboardEntry{
			TelegramID:  telegramID,
			Completions: count,
			Score:       float64(count) * pointsPerTask,
		}
		if user, ok := users[telegramID]; ok {
			entry.Username = user.Username
			entry.Tier = user.Tier
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Completions != entries[j].Completions {
			return entries[i].Completions > entries[j].Completions
		}
		return entries[i].TelegramID < entries[j].TelegramID
	})

	if limit <= 0 {
		limit = s.config.Economy.LeaderboardSize
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	for i, entry := range entries {
		entry.Rank = i + 1
	}

	return entries, nil
}
