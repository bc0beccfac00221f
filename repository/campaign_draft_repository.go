package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"akari/database"
	"akari/models"

	"github.com/jackc/pgx/v5"
)

// CampaignDraftRepository stores in-flight campaign creation conversations.
// Unlike the transactional repositories it runs directly against the pool:
// a draft is scratch state owned by a single chat, not ledger state.
type CampaignDraftRepository struct {
	db *database.DB
}

// NewCampaignDraftRepository creates a new campaign draft repository
func NewCampaignDraftRepository(db *database.DB) *CampaignDraftRepository {
	return &CampaignDraftRepository{db: db}
}

// Get retrieves a user's in-flight draft, or nil if none exists
func (r *CampaignDraftRepository) Get(ctx context.Context, telegramID int64) (*models.CampaignDraft, error) {
	query := `
		SELECT telegram_id, step, title, description, points_per_task, tasks, updated_at
		FROM campaign_drafts
		WHERE telegram_id = $1
	`

	var draft models.CampaignDraft
	var tasksJSON []byte
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&draft.TelegramID,
		&draft.Step,
		&draft.Title,
		&draft.Description,
		&draft.PointsPerTask,
		&tasksJSON,
		&draft.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign draft for user %d: %w", telegramID, err)
	}

	if err := json.Unmarshal(tasksJSON, &draft.Tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft tasks: %w", err)
	}

	return &draft, nil
}

// Save replaces the user's draft wholesale with the given snapshot
func (r *CampaignDraftRepository) Save(ctx context.Context, draft *models.CampaignDraft) error {
	tasks := draft.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal draft tasks: %w", err)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM campaign_drafts WHERE telegram_id = $1`, draft.TelegramID); err != nil {
			return fmt.Errorf("failed to clear previous draft: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_drafts (telegram_id, step, title, description, points_per_task, tasks, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
		`, draft.TelegramID, draft.Step, draft.Title, draft.Description, draft.PointsPerTask, tasksJSON)
		if err != nil {
			return fmt.Errorf("failed to save campaign draft: %w", err)
		}

		return nil
	})
}

// Delete discards a user's draft. Deleting an absent draft is a no-op.
func (r *CampaignDraftRepository) Delete(ctx context.Context, telegramID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM campaign_drafts WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete campaign draft for user %d: %w", telegramID, err)
	}
	return nil
}
