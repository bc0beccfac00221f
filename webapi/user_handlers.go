package webapi

import (
	"net/http"

	"akari/models"
	"akari/service"
)

type userHandler struct {
	users  service.UserService
	points service.PointsService
}

func newUserHandler(users service.UserService, points service.PointsService) *userHandler {
	return &userHandler{users: users, points: points}
}

// UserResponse is the portal projection of a user
type UserResponse struct {
	TelegramID  int64       `json:"telegram_id"`
	Username    string      `json:"username"`
	Points      float64     `json:"points"`
	Tier        models.Tier `json:"tier"`
	MystBalance float64     `json:"myst_balance"`
	TonWallet   *string     `json:"ton_wallet,omitempty"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		TelegramID:  user.TelegramID,
		Username:    user.Username,
		Points:      user.Points,
		Tier:        user.Tier,
		MystBalance: user.MystBalance,
		TonWallet:   user.TonWallet,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
}

func (h *userHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	user, err := h.users.GetOrCreateUser(r.Context(), callerID(r), req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userHandler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), callerID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.users.GetHistory(r.Context(), callerID(r), 50)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	type historyEntry struct {
		Currency        models.Currency        `json:"currency"`
		ChangeAmount    float64                `json:"change_amount"`
		BalanceAfter    float64                `json:"balance_after"`
		TransactionType models.TransactionType `json:"transaction_type"`
		CreatedAt       string                 `json:"created_at"`
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			Currency:        e.Currency,
			ChangeAmount:    e.ChangeAmount,
			BalanceAfter:    e.BalanceAfter,
			TransactionType: e.TransactionType,
			CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, http.StatusOK, out)
}

type setWalletRequest struct {
	TonWallet string `json:"ton_wallet" validate:"required,min=4,max=128"`
}

func (h *userHandler) handleSetWallet(w http.ResponseWriter, r *http.Request) {
	var req setWalletRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	if err := h.users.SetTonWallet(r.Context(), callerID(r), req.TonWallet); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "wallet updated"})
}

type adminAwardRequest struct {
	TelegramID int64   `json:"telegram_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required"`
	Reason     string  `json:"reason" validate:"required,max=500"`
}

func (h *userHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}

	respondJSON(w, http.StatusOK, out)
}

func (h *userHandler) handleAdminAward(w http.ResponseWriter, r *http.Request) {
	var req adminAwardRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	user, err := h.points.AdminAward(r.Context(), req.TelegramID, req.Amount, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
