package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"akari/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const maxCampaignTasks = 50

// draftStore persists in-flight campaign drafts between messages so a
// restart resumes the conversation instead of silently dropping it.
type draftStore interface {
	Get(ctx context.Context, telegramID int64) (*models.CampaignDraft, error)
	Save(ctx context.Context, draft *models.CampaignDraft) error
	Delete(ctx context.Context, telegramID int64) error
}

// promptFor returns the question asked while a draft sits at the given step
func promptFor(step models.CampaignDraftStep) string {
	switch step {
	case models.DraftStepTitle:
		return "What's the title? (/cancel to abort)"
	case models.DraftStepDescription:
		return "Now send a description, or \"skip\" for none."
	case models.DraftStepPoints:
		return "How many points per completed task? Send a number, or \"default\"."
	case models.DraftStepTasks:
		return "Now send the tasks, one message each. Send \"done\" when finished."
	}
	return ""
}

// stepDraft consumes one message and returns the next prompt. done is true
// once every field has been collected. Invalid input re-prompts without
// advancing the draft.
func stepDraft(d *models.CampaignDraft, input string) (reply string, done bool) {
	input = strings.TrimSpace(input)

	switch d.Step {
	case models.DraftStepTitle:
		if input == "" || len(input) > 255 {
			return "Please send a title between 1 and 255 characters.", false
		}
		d.Title = input
		d.Step = models.DraftStepDescription
		return "Got it. " + promptFor(d.Step), false

	case models.DraftStepDescription:
		if !strings.EqualFold(input, "skip") {
			d.Description = input
		}
		d.Step = models.DraftStepPoints
		return promptFor(d.Step), false

	case models.DraftStepPoints:
		if !strings.EqualFold(input, "default") {
			points, err := strconv.ParseFloat(input, 64)
			if err != nil || points < 0 {
				return "That's not a valid amount. Send a non-negative number, or \"default\".", false
			}
			d.PointsPerTask = points
		}
		d.Step = models.DraftStepTasks
		return promptFor(d.Step), false

	case models.DraftStepTasks:
		if strings.EqualFold(input, "done") {
			if len(d.Tasks) == 0 {
				return "A campaign needs at least one task. Send the first one.", false
			}
			return "", true
		}
		if input == "" || len(input) > 500 {
			return "Please send a task description between 1 and 500 characters.", false
		}
		if len(d.Tasks) >= maxCampaignTasks {
			return fmt.Sprintf("That's the maximum of %d tasks. Send \"done\" to finish.", maxCampaignTasks), false
		}
		d.Tasks = append(d.Tasks, input)
		return fmt.Sprintf("Task %d added. Send another, or \"done\" to finish.", len(d.Tasks)), false
	}

	return "", false
}

func (b *Bot) handleNewCampaign(ctx context.Context, msg *tgbotapi.Message) {
	draft, err := b.drafts.Get(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if draft != nil {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Resuming your campaign draft. "+promptFor(draft.Step)))
		return
	}

	draft = &models.CampaignDraft{TelegramID: msg.From.ID, Step: models.DraftStepTitle}
	if err := b.drafts.Save(ctx, draft); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Let's create a campaign. "+promptFor(models.DraftStepTitle)))
}

func (b *Bot) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	draft, err := b.drafts.Get(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}
	if draft == nil {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Nothing to cancel."))
		return
	}

	if err := b.drafts.Delete(ctx, msg.From.ID); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Campaign creation cancelled."))
}

func (b *Bot) advanceConversation(ctx context.Context, msg *tgbotapi.Message) {
	draft, err := b.drafts.Get(ctx, msg.From.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", msg.From.ID).Warn("Failed to load campaign draft")
		return
	}
	if draft == nil {
		return
	}

	reply, done := stepDraft(draft, msg.Text)
	if !done {
		// Persist progress before answering so a restart resumes here
		if err := b.drafts.Save(ctx, draft); err != nil {
			b.replyError(ctx, msg.Chat.ID, err)
			return
		}
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2(reply))
		return
	}

	detail, err := b.campaigns.CreateCampaign(ctx, msg.From.ID, draft.Title, draft.Description, draft.PointsPerTask, draft.Tasks)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	if err := b.drafts.Delete(ctx, msg.From.ID); err != nil {
		log.WithError(err).WithField("user_id", msg.From.ID).Warn("Failed to discard completed campaign draft")
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Campaign \\#%d created as a draft with %d tasks\\. An admin can activate it\\.",
		detail.Campaign.ID, len(detail.Tasks)))
}
