package webapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"akari/service"
)

type rewardHandler struct {
	rewards service.RewardService
	users   service.UserService
}

func newRewardHandler(rewards service.RewardService, users service.UserService) *rewardHandler {
	return &rewardHandler{rewards: rewards, users: users}
}

type rewardListResponse struct {
	Rewards     []*service.RewardView `json:"rewards"`
	MystBalance float64               `json:"myst_balance"`
}

func (h *rewardHandler) handleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.rewards.ListRewards(r.Context(), callerID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), callerID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rewardListResponse{
		Rewards:     views,
		MystBalance: user.MystBalance,
	})
}

type claimRequest struct {
	TonWallet string `json:"ton_wallet,omitempty"`
}

func (h *rewardHandler) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	// The body is optional; a wallet sent here is stored before the claim
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TonWallet != "" {
		if err := h.users.SetTonWallet(r.Context(), callerID(r), req.TonWallet); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	result, err := h.rewards.ClaimReward(r.Context(), id, callerID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *rewardHandler) handleTotalBurned(w http.ResponseWriter, r *http.Request) {
	total, err := h.rewards.TotalBurned(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{"total_burned": total})
}

type grantWeeklyRequest struct {
	WeekStart string `json:"week_start" validate:"required,datetime=2006-01-02"`
	Prizes    []struct {
		TelegramID int64   `json:"telegram_id" validate:"required,gt=0"`
		Rank       int     `json:"rank" validate:"required,gt=0"`
		UsdAmount  float64 `json:"usd_amount" validate:"required,gt=0"`
	} `json:"prizes" validate:"required,min=1,dive"`
}

func (h *rewardHandler) handleGrantWeekly(w http.ResponseWriter, r *http.Request) {
	var req grantWeeklyRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid week_start")
		return
	}

	prizes := make([]service.WeeklyPrize, 0, len(req.Prizes))
	for _, p := range req.Prizes {
		prizes = append(prizes, service.WeeklyPrize{
			TelegramID: p.TelegramID,
			Rank:       p.Rank,
			UsdAmount:  p.UsdAmount,
		})
	}

	rewards, err := h.rewards.GrantWeeklyRewards(r.Context(), weekStart, prizes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int{"granted": len(rewards)})
}

type payoutQueueEntry struct {
	RewardID   int64      `json:"reward_id"`
	TelegramID int64      `json:"telegram_id"`
	WeekStart  time.Time  `json:"week_start"`
	Rank       int        `json:"rank"`
	UsdAmount  float64    `json:"usd_amount"`
	BurnedMyst float64    `json:"burned_myst"`
	TonWallet  *string    `json:"ton_wallet,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
}

// handlePayoutQueue lists claimed rewards awaiting payment. Admin-only:
// unlike the claimant view, the USD amounts are included.
func (h *rewardHandler) handlePayoutQueue(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.ListPayoutQueue(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]payoutQueueEntry, 0, len(rewards))
	for _, reward := range rewards {
		out = append(out, payoutQueueEntry{
			RewardID:   reward.ID,
			TelegramID: reward.TelegramID,
			WeekStart:  reward.WeekStart,
			Rank:       reward.Rank,
			UsdAmount:  reward.UsdAmount,
			BurnedMyst: reward.BurnedMyst,
			TonWallet:  reward.TonWallet,
			ClaimedAt:  reward.ClaimedAt,
		})
	}

	respondJSON(w, http.StatusOK, out)
}

func (h *rewardHandler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	if err := h.rewards.MarkRewardPaid(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "reward marked paid"})
}
