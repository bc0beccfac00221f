package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"akari/database"
	"akari/models"

	"github.com/jackc/pgx/v5"
)

// CampaignRepository implements all campaign related data access
type CampaignRepository struct {
	q queryable
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *database.DB) *CampaignRepository {
	return &CampaignRepository{q: db.Pool}
}

// newCampaignRepositoryWithTx creates a new campaign repository with a transaction
func newCampaignRepositoryWithTx(tx queryable) *CampaignRepository {
	return &CampaignRepository{q: tx}
}

const campaignColumns = `id, creator_telegram_id, title, description, points_per_task, state, leaderboard_updated_at, created_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID,
		&c.CreatorTelegramID,
		&c.Title,
		&c.Description,
		&c.PointsPerTask,
		&c.State,
		&c.LeaderboardUpdatedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateWithTasks creates a new campaign with its tasks atomically
func (r *CampaignRepository) CreateWithTasks(ctx context.Context, campaign *models.Campaign, tasks []*models.CampaignTask) error {
	query := `
		INSERT INTO campaigns (creator_telegram_id, title, description, points_per_task, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		campaign.CreatorTelegramID,
		campaign.Title,
		campaign.Description,
		campaign.PointsPerTask,
		campaign.State,
	).Scan(&campaign.ID, &campaign.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	if len(tasks) > 0 {
		taskQuery := `
			INSERT INTO campaign_tasks (campaign_id, title, task_order)
			VALUES
		`

		var args []interface{}
		for i, task := range tasks {
			if i > 0 {
				taskQuery += ","
			}
			paramIndex := i * 3
			taskQuery += fmt.Sprintf(" ($%d, $%d, $%d)", paramIndex+1, paramIndex+2, paramIndex+3)
			args = append(args, campaign.ID, task.Title, task.TaskOrder)
		}

		taskQuery += " RETURNING id, created_at"

		rows, err := r.q.Query(ctx, taskQuery, args...)
		if err != nil {
			return fmt.Errorf("failed to create campaign tasks: %w", err)
		}
		defer rows.Close()

		i := 0
		for rows.Next() {
			if i >= len(tasks) {
				return fmt.Errorf("unexpected number of rows returned")
			}
			err := rows.Scan(&tasks[i].ID, &tasks[i].CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to scan task ID: %w", err)
			}
			tasks[i].CampaignID = campaign.ID
			i++
		}
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)

	campaign, err := scanCampaign(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}

	return campaign, nil
}

// GetDetailByID retrieves a campaign with its tasks
func (r *CampaignRepository) GetDetailByID(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	campaign, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, nil
	}

	tasks, err := r.GetTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.CampaignDetail{Campaign: campaign, Tasks: tasks}, nil
}

// GetTasks returns a campaign's tasks in order
func (r *CampaignRepository) GetTasks(ctx context.Context, campaignID int64) ([]*models.CampaignTask, error) {
	query := `
		SELECT id, campaign_id, title, task_order, created_at
		FROM campaign_tasks
		WHERE campaign_id = $1
		ORDER BY task_order
	`

	rows, err := r.q.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	var tasks []*models.CampaignTask
	for rows.Next() {
		var task models.CampaignTask
		err := rows.Scan(&task.ID, &task.CampaignID, &task.Title, &task.TaskOrder, &task.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetTaskByID retrieves a single task
func (r *CampaignRepository) GetTaskByID(ctx context.Context, taskID int64) (*models.CampaignTask, error) {
	query := `
		SELECT id, campaign_id, title, task_order, created_at
		FROM campaign_tasks
		WHERE id = $1
	`

	var task models.CampaignTask
	err := r.q.QueryRow(ctx, query, taskID).Scan(&task.ID, &task.CampaignID, &task.Title, &task.TaskOrder, &task.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}

	return &task, nil
}

// ListByState returns campaigns in the given state, newest first
func (r *CampaignRepository) ListByState(ctx context.Context, state models.CampaignState) ([]*models.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE state = $1
		ORDER BY created_at DESC
	`, campaignColumns)

	rows, err := r.q.Query(ctx, query, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campaigns: %w", err)
	}

	return campaigns, nil
}

// UpdateState transitions a campaign between lifecycle states
func (r *CampaignRepository) UpdateState(ctx context.Context, id int64, from, to models.CampaignState) error {
	query := `UPDATE campaigns SET state = $1 WHERE id = $2 AND state = $3`

	result, err := r.q.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update campaign %d state: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("campaign %d not in state %s: %w", id, from, models.ErrInvalidState)
	}

	return nil
}

// CreateCompletion records that a user completed a task. Returns
// ErrInvalidState if the completion already exists.
func (r *CampaignRepository) CreateCompletion(ctx context.Context, completion *models.TaskCompletion) error {
	query := `
		INSERT INTO task_completions (campaign_id, task_id, telegram_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, telegram_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		completion.CampaignID,
		completion.TaskID,
		completion.TelegramID,
	).Scan(&completion.ID, &completion.CreatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("task %d already completed by user %d: %w",
			completion.TaskID, completion.TelegramID, models.ErrInvalidState)
	}
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	return nil
}

// CountCompletionsByUser returns per-user completion counts for a campaign.
// A zero campaignID aggregates across all campaigns.
func (r *CampaignRepository) CountCompletionsByUser(ctx context.Context, campaignID int64) (map[int64]int, error) {
	query := `
		SELECT telegram_id, COUNT(*)
		FROM task_completions
		WHERE ($1 = 0 OR campaign_id = $1)
		GROUP BY telegram_id
	`

	rows, err := r.q.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var telegramID int64
		var count int
		if err := rows.Scan(&telegramID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan completion count: %w", err)
		}
		counts[telegramID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion counts: %w", err)
	}

	return counts, nil
}

// SaveLeaderboardSnapshot persists a computed leaderboard and stamps the
// campaign's refresh time. A zero campaignID stores a global snapshot.
func (r *CampaignRepository) SaveLeaderboardSnapshot(ctx context.Context, campaignID int64, entries []*models.LeaderboardEntry) error {
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard entries: %w", err)
	}

	var id *int64
	if campaignID != 0 {
		id = &campaignID
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO leaderboard_snapshots (campaign_id, entries)
		VALUES ($1, $2)
	`, id, entriesJSON)
	if err != nil {
		return fmt.Errorf("failed to save leaderboard snapshot: %w", err)
	}

	if campaignID != 0 {
		_, err = r.q.Exec(ctx, `
			UPDATE campaigns SET leaderboard_updated_at = NOW() WHERE id = $1
		`, campaignID)
		if err != nil {
			return fmt.Errorf("failed to stamp leaderboard refresh time: %w", err)
		}
	}

	return nil
}
