package bot

import (
	"fmt"
	"strings"

	"akari/models"
	"akari/service"
)

const helpText = "*AKARI commands*\n\n" +
	"/balance \\- show your points, tier and MYST\n" +
	"/wallet \\<address\\> \\- set your TON payout wallet\n" +
	"/predictions \\- list open predictions\n" +
	"/prediction \\<id\\> \\- show a prediction's options\n" +
	"/bet \\<prediction\\> \\<option\\> \\<amount\\> \\- stake points\n" +
	"/rewards \\- list your weekly rewards\n" +
	"/claim \\<reward\\> \\- claim a reward by burning MYST\n" +
	"/leaderboard \\[campaign\\] \\- show the ranking\n" +
	"/newcampaign \\- create an engagement campaign\n" +
	"/cancel \\- abort the current conversation"

// escapeMarkdownV2 escapes the characters Telegram treats as markup in
// MarkdownV2 parse mode.
func escapeMarkdownV2(text string) string {
	var sb strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			sb.WriteRune('\\')
		}
		sb.WriteRune(char)
	}
	return sb.String()
}

func formatBalance(user *models.User) string {
	return fmt.Sprintf("*Balance*\n\nPoints: %s\nTier: %s\nMYST: %s",
		escapeMarkdownV2(fmt.Sprintf("%.1f", user.Points)),
		escapeMarkdownV2(string(user.Tier)),
		escapeMarkdownV2(fmt.Sprintf("%.1f", user.MystBalance)))
}

func formatPredictions(predictions []*models.Prediction) string {
	if len(predictions) == 0 {
		return escapeMarkdownV2("No open predictions right now.")
	}

	var sb strings.Builder
	sb.WriteString("*Open predictions*\n\n")
	for _, p := range predictions {
		sb.WriteString(fmt.Sprintf("\\#%d %s\n", p.ID, escapeMarkdownV2(p.Question)))
		sb.WriteString(fmt.Sprintf("   pot: %d \\| closes: %s\n",
			p.TotalPot,
			escapeMarkdownV2(p.EndsAt.Format("2006-01-02 15:04"))))
	}
	sb.WriteString("\nBet with /bet \\<prediction\\> \\<option\\> \\<amount\\>")
	return sb.String()
}

func formatPredictionDetail(detail *models.PredictionDetail) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\\#%d %s\n\n", detail.Prediction.ID, escapeMarkdownV2(detail.Prediction.Question)))
	for _, opt := range detail.Options {
		sb.WriteString(fmt.Sprintf("  %d\\. %s \\(staked: %d\\)\n", opt.ID, escapeMarkdownV2(opt.Label), opt.TotalStaked))
	}
	sb.WriteString(fmt.Sprintf("\npot: %d \\| closes: %s\n",
		detail.Prediction.TotalPot,
		escapeMarkdownV2(detail.Prediction.EndsAt.Format("2006-01-02 15:04"))))
	sb.WriteString("Bet with /bet \\<prediction\\> \\<option\\> \\<amount\\>")
	return sb.String()
}

func formatRewards(views []*service.RewardView) string {
	if len(views) == 0 {
		return escapeMarkdownV2("No rewards yet. Climb the leaderboard!")
	}

	var sb strings.Builder
	sb.WriteString("*Your rewards*\n\n")
	for _, v := range views {
		week := escapeMarkdownV2(v.WeekStart.Format("2006-01-02"))
		switch {
		case v.UsdAmount != nil:
			sb.WriteString(fmt.Sprintf("\\#%d week %s \\- rank %d \\- paid %s\n",
				v.ID, week, v.Rank,
				escapeMarkdownV2(fmt.Sprintf("$%.2f", *v.UsdAmount))))
		case v.Status == models.RewardStatusPendingBurn:
			sb.WriteString(fmt.Sprintf("\\#%d week %s \\- rank %d \\- claim with /claim %d \\(burn %s MYST\\)\n",
				v.ID, week, v.Rank, v.ID,
				escapeMarkdownV2(fmt.Sprintf("%.1f", v.RequiredMyst))))
		default:
			sb.WriteString(fmt.Sprintf("\\#%d week %s \\- rank %d \\- awaiting payout\n",
				v.ID, week, v.Rank))
		}
	}
	return sb.String()
}

func formatLeaderboard(title string, entries []*models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return escapeMarkdownV2("The leaderboard is empty.")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n\n", escapeMarkdownV2(title)))
	for _, e := range entries {
		name := e.Username
		if name == "" {
			name = fmt.Sprintf("user %d", e.TelegramID)
		}
		sb.WriteString(fmt.Sprintf("%d\\. %s \\- %s \\(%d tasks\\)\n",
			e.Rank,
			escapeMarkdownV2(name),
			escapeMarkdownV2(fmt.Sprintf("%.1f", e.Score)),
			e.Completions))
	}
	return sb.String()
}
