package webapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"akari/models"
	"akari/service"
)

type predictionHandler struct {
	predictions service.PredictionService
}

func newPredictionHandler(predictions service.PredictionService) *predictionHandler {
	return &predictionHandler{predictions: predictions}
}

// pathID parses a numeric path parameter, writing a 400 on failure
func pathID(r *http.Request, w http.ResponseWriter, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// PredictionResponse is the portal projection of a prediction
type PredictionResponse struct {
	ID              int64                  `json:"id"`
	Question        string                 `json:"question"`
	State           models.PredictionState `json:"state"`
	TotalPot        int64                  `json:"total_pot"`
	WinningOptionID *int64                 `json:"winning_option_id,omitempty"`
	EndsAt          time.Time              `json:"ends_at"`
	Options         []OptionResponse       `json:"options,omitempty"`
}

// OptionResponse is one outcome of a prediction
type OptionResponse struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	TotalStaked int64  `json:"total_staked"`
}

func toPredictionResponse(p *models.Prediction, options []*models.PredictionOption) PredictionResponse {
	resp := PredictionResponse{
		ID:              p.ID,
		Question:        p.Question,
		State:           p.State,
		TotalPot:        p.TotalPot,
		WinningOptionID: p.WinningOptionID,
		EndsAt:          p.EndsAt,
	}
	for _, opt := range options {
		resp.Options = append(resp.Options, OptionResponse{
			ID:          opt.ID,
			Label:       opt.Label,
			TotalStaked: opt.TotalStaked,
		})
	}
	return resp
}

func (h *predictionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictions.ListOpenPredictions(r.Context(), 20)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, toPredictionResponse(p, nil))
	}

	respondJSON(w, http.StatusOK, out)
}

type createPredictionRequest struct {
	Question string    `json:"question" validate:"required,min=1,max=500"`
	Options  []string  `json:"options" validate:"required,min=2,max=10,dive,required,max=100"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

func (h *predictionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPredictionRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	detail, err := h.predictions.CreatePrediction(r.Context(), callerID(r), req.Question, req.Options, req.EndsAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toPredictionResponse(detail.Prediction, detail.Options))
}

func (h *predictionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	detail, err := h.predictions.GetPredictionDetail(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPredictionResponse(detail.Prediction, detail.Options))
}

type placeBetRequest struct {
	OptionID int64  `json:"option_id" validate:"required,gt=0"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,oneof=points myst"`
}

func (h *predictionHandler) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	var req placeBetRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	currency := models.CurrencyPoints
	if req.Currency != "" {
		currency = models.Currency(req.Currency)
	}

	bet, err := h.predictions.PlaceBet(r.Context(), id, callerID(r), req.OptionID, req.Amount, currency)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"bet_id":    bet.ID,
		"option_id": bet.OptionID,
		"amount":    bet.Amount,
		"currency":  bet.Currency,
	})
}

type resolvePredictionRequest struct {
	WinningOptionID int64 `json:"winning_option_id" validate:"required,gt=0"`
}

func (h *predictionHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	var req resolvePredictionRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	result, err := h.predictions.ResolvePrediction(r.Context(), id, callerID(r), req.WinningOptionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"prediction_id":     result.Prediction.ID,
		"winning_option_id": result.WinningOption.ID,
		"total_pot":         result.TotalPot,
		"house_fee":         result.HouseFee,
		"payout_pool":       result.PayoutPool,
		"winner_count":      len(result.Winners),
		"payouts":           result.Payouts,
	})
}
