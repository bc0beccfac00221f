package bot

import (
	"testing"

	"akari/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft() *models.CampaignDraft {
	return &models.CampaignDraft{TelegramID: 123, Step: models.DraftStepTitle}
}

func TestStepDraft_HappyPath(t *testing.T) {
	draft := newDraft()

	_, done := stepDraft(draft, "Launch Week")
	assert.False(t, done)
	assert.Equal(t, models.DraftStepDescription, draft.Step)

	_, done = stepDraft(draft, "Celebrate the launch")
	assert.False(t, done)

	_, done = stepDraft(draft, "0.5")
	assert.False(t, done)

	_, done = stepDraft(draft, "Follow us on X")
	assert.False(t, done)
	_, done = stepDraft(draft, "Join the group chat")
	assert.False(t, done)

	_, done = stepDraft(draft, "done")
	require.True(t, done)

	assert.Equal(t, "Launch Week", draft.Title)
	assert.Equal(t, "Celebrate the launch", draft.Description)
	assert.Equal(t, 0.5, draft.PointsPerTask)
	assert.Equal(t, []string{"Follow us on X", "Join the group chat"}, draft.Tasks)
}

func TestStepDraft_SkipsAndDefaults(t *testing.T) {
	draft := newDraft()

	stepDraft(draft, "Quiet Launch")
	stepDraft(draft, "skip")
	stepDraft(draft, "default")
	stepDraft(draft, "Retweet the announcement")
	_, done := stepDraft(draft, "DONE")

	require.True(t, done)
	assert.Empty(t, draft.Description)
	assert.Zero(t, draft.PointsPerTask)
	assert.Len(t, draft.Tasks, 1)
}

func TestStepDraft_InvalidInputDoesNotAdvance(t *testing.T) {
	draft := newDraft()

	_, done := stepDraft(draft, "   ")
	assert.False(t, done)
	assert.Equal(t, models.DraftStepTitle, draft.Step)

	stepDraft(draft, "Title")
	stepDraft(draft, "skip")

	_, done = stepDraft(draft, "not a number")
	assert.False(t, done)
	assert.Equal(t, models.DraftStepPoints, draft.Step)

	_, done = stepDraft(draft, "-3")
	assert.False(t, done)
	assert.Equal(t, models.DraftStepPoints, draft.Step)
}

func TestStepDraft_DoneRequiresTasks(t *testing.T) {
	draft := newDraft()

	stepDraft(draft, "Title")
	stepDraft(draft, "skip")
	stepDraft(draft, "default")

	_, done := stepDraft(draft, "done")
	assert.False(t, done)
	assert.Equal(t, models.DraftStepTasks, draft.Step)

	stepDraft(draft, "First task")
	_, done = stepDraft(draft, "done")
	assert.True(t, done)
}

func TestPromptFor_CoversEveryStep(t *testing.T) {
	steps := []models.CampaignDraftStep{
		models.DraftStepTitle,
		models.DraftStepDescription,
		models.DraftStepPoints,
		models.DraftStepTasks,
	}
	// A resumed conversation re-asks the question for the stored step
	for _, step := range steps {
		assert.NotEmpty(t, promptFor(step))
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, "plain text", escapeMarkdownV2("plain text"))
	assert.Equal(t, "1\\. hello \\(world\\)\\!", escapeMarkdownV2("1. hello (world)!"))
	assert.Equal(t, "a\\_b\\*c", escapeMarkdownV2("a_b*c"))
}
