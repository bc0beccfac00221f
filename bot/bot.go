package bot

import (
	"context"
	"fmt"
	"strings"

	"akari/config"
	"akari/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Bot is the Telegram transport over the shared service layer. Every
// command handler calls the same services the HTTP API uses.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	limiter *rate.Limiter

	users        service.UserService
	points       service.PointsService
	predictions  service.PredictionService
	rewards      service.RewardService
	leaderboards service.LeaderboardService
	campaigns    service.CampaignService

	drafts draftStore
}

// New creates a Telegram bot connected to the given services
func New(
	cfg *config.Config,
	users service.UserService,
	points service.PointsService,
	predictions service.PredictionService,
	rewards service.RewardService,
	leaderboards service.LeaderboardService,
	campaigns service.CampaignService,
	drafts draftStore,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	sendRate := cfg.Telegram.SendRate
	if sendRate <= 0 {
		sendRate = 20
	}

	return &Bot{
		api:          api,
		cfg:          cfg,
		limiter:      rate.NewLimiter(rate.Limit(sendRate), 1),
		users:        users,
		points:       points,
		predictions:  predictions,
		rewards:      rewards,
		leaderboards: leaderboards,
		campaigns:    campaigns,
		drafts:       drafts,
	}, nil
}

// Start runs the long polling loop until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	log.WithField("username", b.api.Self.UserName).Info("Telegram bot authorized")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	userID := msg.From.ID

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"user_id": userID,
				"panic":   r,
			}).Error("Recovered from panic in update handler")
		}
	}()

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Non-command messages only matter inside an active conversation
	b.advanceConversation(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()
	args := strings.Fields(msg.CommandArguments())

	log.WithFields(log.Fields{
		"user_id": msg.From.ID,
		"command": command,
	}).Debug("Handling command")

	switch command {
	case "start":
		b.handleStart(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "wallet":
		b.handleWallet(ctx, msg, args)
	case "predictions":
		b.handlePredictions(ctx, msg)
	case "prediction":
		b.handlePrediction(ctx, msg, args)
	case "bet":
		b.handleBet(ctx, msg, args)
	case "rewards":
		b.handleRewards(ctx, msg)
	case "claim":
		b.handleClaim(ctx, msg, args)
	case "leaderboard":
		b.handleLeaderboard(ctx, msg, args)
	case "newcampaign":
		b.handleNewCampaign(ctx, msg)
	case "cancel":
		b.handleCancel(ctx, msg)
	case "help":
		b.reply(ctx, msg.Chat.ID, helpText)
	default:
		b.reply(ctx, msg.Chat.ID, escapeMarkdownV2("Unknown command. Try /help."))
	}
}

// reply sends a MarkdownV2 message, respecting the outbound rate limit
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "MarkdownV2"

	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}
