package models

// LeaderboardEntry is an ephemeral, computed ranking row. Entries are
// recomputed on demand from raw completion events and never incrementally
// updated.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	TelegramID  int64   `json:"telegram_id"`
	Username    string  `json:"username"`
	Tier        Tier    `json:"tier"`
	Completions int     `json:"completions"`
	Score       float64 `json:"score"`
}
