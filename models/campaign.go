package models

import (
	"time"
)

// CampaignState represents the state of an engagement campaign
type CampaignState string

const (
	CampaignStateDraft  CampaignState = "draft"
	CampaignStateActive CampaignState = "active"
	CampaignStateClosed CampaignState = "closed"
)

// Campaign represents an engagement campaign whose task completions feed
// the points ledger and the leaderboard aggregator.
type Campaign struct {
	ID                   int64         `db:"id"`
	CreatorTelegramID    int64         `db:"creator_telegram_id"`
	Title                string        `db:"title"`
	Description          string        `db:"description"`
	PointsPerTask        float64       `db:"points_per_task"`
	State                CampaignState `db:"state"`
	LeaderboardUpdatedAt *time.Time    `db:"leaderboard_updated_at"`
	CreatedAt            time.Time     `db:"created_at"`
}

// CampaignTask is a single task within a campaign
type CampaignTask struct {
	ID         int64     `db:"id"`
	CampaignID int64     `db:"campaign_id"`
	Title      string    `db:"title"`
	TaskOrder  int16     `db:"task_order"`
	CreatedAt  time.Time `db:"created_at"`
}

// TaskCompletion records that a user completed a campaign task. These raw
// events are the source of truth for leaderboards; snapshots cached on the
// campaign are advisory only.
type TaskCompletion struct {
	ID         int64     `db:"id"`
	CampaignID int64     `db:"campaign_id"`
	TaskID     int64     `db:"task_id"`
	TelegramID int64     `db:"telegram_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// CampaignDraftStep identifies which field a campaign draft collects next
type CampaignDraftStep string

const (
	DraftStepTitle       CampaignDraftStep = "title"
	DraftStepDescription CampaignDraftStep = "description"
	DraftStepPoints      CampaignDraftStep = "points"
	DraftStepTasks       CampaignDraftStep = "tasks"
)

// CampaignDraft is a partially collected campaign from an in-flight bot
// conversation. Drafts are persisted after every step so a restart picks
// the conversation back up where it left off. One draft per user.
type CampaignDraft struct {
	TelegramID    int64             `db:"telegram_id"`
	Step          CampaignDraftStep `db:"step"`
	Title         string            `db:"title"`
	Description   string            `db:"description"`
	PointsPerTask float64           `db:"points_per_task"`
	Tasks         []string          `db:"tasks"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

// CampaignDetail combines a campaign with its tasks
type CampaignDetail struct {
	Campaign *Campaign
	Tasks    []*CampaignTask
}

// IsActive checks if the campaign accepts completions
func (c *Campaign) IsActive() bool {
	return c.State == CampaignStateActive
}

// IsValid checks if the state is one of the known campaign states
func (s CampaignState) IsValid() bool {
	switch s {
	case CampaignStateDraft, CampaignStateActive, CampaignStateClosed:
		return true
	}
	return false
}
