package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"akari/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.GetOrCreateUser(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Welcome to AKARI\\!\n\n%s\n\nSee /help for commands\\.", formatBalance(user)))
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.GetUser(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, formatBalance(user))
}

func (b *Bot) handleWallet(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Usage: /wallet <address>"))
		return
	}

	if err := b.users.SetTonWallet(ctx, msg.From.ID, args[0]); err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Payout wallet updated."))
}

func (b *Bot) handlePredictions(ctx context.Context, msg *tgbotapi.Message) {
	predictions, err := b.predictions.ListOpenPredictions(ctx, 10)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, formatPredictions(predictions))
}

func (b *Bot) handlePrediction(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Usage: /prediction <id>"))
		return
	}

	predictionID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Prediction must be a number."))
		return
	}

	detail, err := b.predictions.GetPredictionDetail(ctx, predictionID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, formatPredictionDetail(detail))
}

func (b *Bot) handleBet(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 3 || len(args) > 4 {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Usage: /bet <prediction> <option> <amount> [points|myst]"))
		return
	}

	predictionID, err1 := strconv.ParseInt(args[0], 10, 64)
	optionID, err2 := strconv.ParseInt(args[1], 10, 64)
	amount, err3 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Prediction, option and amount must all be numbers."))
		return
	}

	currency := models.CurrencyPoints
	if len(args) == 4 {
		currency = models.Currency(strings.ToLower(args[3]))
	}

	bet, err := b.predictions.PlaceBet(ctx, predictionID, msg.From.ID, optionID, amount, currency)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Bet placed: %d %s on option %d\\. Good luck\\!",
		bet.Amount, escapeMarkdownV2(string(bet.Currency)), bet.OptionID))
}

func (b *Bot) handleRewards(ctx context.Context, msg *tgbotapi.Message) {
	views, err := b.rewards.ListRewards(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, formatRewards(views))
}

func (b *Bot) handleClaim(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Usage: /claim <reward>"))
		return
	}

	rewardID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Reward must be a number."))
		return
	}

	result, err := b.rewards.ClaimReward(ctx, rewardID, msg.From.ID)
	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Claimed\\! Burned %s MYST, %s remaining\\. Your reward is now %s\\.",
		escapeMarkdownV2(fmt.Sprintf("%.1f", result.BurnedMyst)),
		escapeMarkdownV2(fmt.Sprintf("%.1f", result.MystBalance)),
		escapeMarkdownV2(strings.ReplaceAll(string(result.Status), "_", " "))))
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message, args []string) {
	var entries []*models.LeaderboardEntry
	var err error
	title := "Global leaderboard"

	if len(args) > 0 {
		campaignID, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Campaign must be a number."))
			return
		}
		entries, err = b.leaderboards.ComputeCampaignLeaderboard(ctx, campaignID, 0)
		title = fmt.Sprintf("Campaign %d leaderboard", campaignID)
	} else {
		entries, err = b.leaderboards.ComputeGlobalLeaderboard(ctx, 0)
	}

	if err != nil {
		b.replyError(ctx, msg.Chat.ID, err)
		return
	}

	b.reply(ctx, msg.Chat.ID, formatLeaderboard(title, entries))
}

// replyError translates service errors into user-facing messages
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, models.ErrNotFound):
		text = "Not found. Have you run /start yet?"
	case errors.Is(err, models.ErrInsufficientBalance):
		text = "You don't have enough points for that."
	case errors.Is(err, models.ErrInvalidState):
		text = "That's no longer possible: " + err.Error()
	case errors.Is(err, models.ErrInvalidArgument):
		text = err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		text = "You're not allowed to do that."
	default:
		log.WithError(err).Error("Unhandled service error in bot handler")
		text = "Something went wrong. Please try again later."
	}

	b.reply(ctx, chatID, escapeMarkdownV2(text))
}
