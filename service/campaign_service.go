package service

import (
	"context"
	"fmt"

	"akari/config"
	"akari/events"
	"akari/models"

	log "github.com/sirupsen/logrus"
)

type campaignService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewCampaignService creates a new campaign service
func NewCampaignService(uowFactory UnitOfWorkFactory, cfg *config.Config) CampaignService {
	return &campaignService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// CreateCampaign creates a draft campaign with its tasks
func (s *campaignService) CreateCampaign(ctx context.Context, creatorID int64, title, description string, pointsPerTask float64, taskTitles []string) (*models.CampaignDetail, error) {
	if title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", models.ErrInvalidArgument)
	}
	if len(taskTitles) == 0 {
		return nil, fmt.Errorf("must provide at least 1 task: %w", models.ErrInvalidArgument)
	}
	if pointsPerTask <= 0 {
		pointsPerTask = s.config.Economy.PointsPerCompletion
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

	campaign := &models.Campaign{
		CreatorTelegramID: creatorID,
		Title:             title,
		Description:       description,
		PointsPerTask:     pointsPerTask,
		State:             models.CampaignStateDraft,
	}

	var tasks []*models.CampaignTask
	for i, taskTitle := range taskTitles {
		tasks = append(tasks, &models.CampaignTask{
			Title:     taskTitle,
			TaskOrder: int16(i),
		})
	}

	if err := uow.CampaignRepository().CreateWithTasks(ctx, campaign, tasks); err != nil {
		return nil, fmt.Errorf("failed to create campaign with tasks: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"campaignID": campaign.ID,
		"creatorID":  creatorID,
		"taskCount":  len(tasks),
	}).Info("Created campaign")

	return &models.CampaignDetail{Campaign: campaign, Tasks: tasks}, nil
}

// ActivateCampaign transitions a draft campaign to active
func (s *campaignService) ActivateCampaign(ctx context.Context, campaignID, actorID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	campaign, err := uow.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to get campaign: %w", err)
	}
	if campaign == nil {
		return fmt.Errorf("campaign %d: %w", campaignID, models.ErrNotFound)
	}
	if campaign.CreatorTelegramID != actorID && !s.config.IsAdmin(actorID) {
		return fmt.Errorf("user %d cannot activate campaign %d: %w", actorID, campaignID, models.ErrUnauthorized)
	}

	if err := uow.CampaignRepository().UpdateState(ctx, campaignID, models.CampaignStateDraft, models.CampaignStateActive); err != nil {
		return err
	}

	uow.EventBus().Publish(events.CampaignActivatedEvent{
		CampaignID: campaignID,
		CreatorID:  campaign.CreatorTelegramID,
		Title:      campaign.Title,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CloseCampaign transitions an active campaign to closed
func (s *campaignService) CloseCampaign(ctx context.Context, campaignID, actorID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	campaign, err := uow.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to get campaign: %w", err)
	}
	if campaign == nil {
		return fmt.Errorf("campaign %d: %w", campaignID, models.ErrNotFound)
	}
	if campaign.CreatorTelegramID != actorID && !s.config.IsAdmin(actorID) {
		return fmt.Errorf("user %d cannot close campaign %d: %w", actorID, campaignID, models.ErrUnauthorized)
	}

	if err := uow.CampaignRepository().UpdateState(ctx, campaignID, models.CampaignStateActive, models.CampaignStateClosed); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCampaignDetail retrieves a campaign with its tasks
func (s *campaignService) GetCampaignDetail(ctx context.Context, campaignID int64) (*models.CampaignDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.CampaignRepository().GetDetailByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("campaign %d: %w", campaignID, models.ErrNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return detail, nil
}

// ListCampaigns returns campaigns in the given state
func (s *campaignService) ListCampaigns(ctx context.Context, state models.CampaignState) ([]*models.Campaign, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	campaigns, err := uow.CampaignRepository().ListByState(ctx, state)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return campaigns, nil
}
