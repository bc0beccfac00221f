package repository

import (
	"context"
	"testing"

	"akari/models"
	"akari/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignDraftRepository_SaveAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCampaignDraftRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no draft", func(t *testing.T) {
		draft, err := repo.Get(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, draft)
	})

	t.Run("roundtrip", func(t *testing.T) {
		err := repo.Save(ctx, &models.CampaignDraft{
			TelegramID:    123456,
			Step:          models.DraftStepTasks,
			Title:         "Launch week",
			Description:   "Spread the word",
			PointsPerTask: 0.5,
			Tasks:         []string{"Follow on X", "Join the chat"},
		})
		require.NoError(t, err)

		draft, err := repo.Get(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, draft)

		assert.Equal(t, models.DraftStepTasks, draft.Step)
		assert.Equal(t, "Launch week", draft.Title)
		assert.Equal(t, 0.5, draft.PointsPerTask)
		assert.Equal(t, []string{"Follow on X", "Join the chat"}, draft.Tasks)
		assert.False(t, draft.UpdatedAt.IsZero())
	})

	t.Run("save replaces the previous draft", func(t *testing.T) {
		err := repo.Save(ctx, &models.CampaignDraft{
			TelegramID: 123456,
			Step:       models.DraftStepTitle,
		})
		require.NoError(t, err)

		draft, err := repo.Get(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, draft)

		assert.Equal(t, models.DraftStepTitle, draft.Step)
		assert.Empty(t, draft.Title)
		assert.Empty(t, draft.Tasks)
	})
}

func TestCampaignDraftRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCampaignDraftRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.CampaignDraft{
		TelegramID: 123456,
		Step:       models.DraftStepDescription,
		Title:      "Launch week",
	}))

	require.NoError(t, repo.Delete(ctx, 123456))

	draft, err := repo.Get(ctx, 123456)
	require.NoError(t, err)
	assert.Nil(t, draft)

	// Deleting again is a no-op
	require.NoError(t, repo.Delete(ctx, 123456))
}
