package webapi

import (
	"net/http"
	"strconv"
	"time"

	"akari/models"
	"akari/service"
)

type campaignHandler struct {
	campaigns    service.CampaignService
	points       service.PointsService
	leaderboards service.LeaderboardService
}

func newCampaignHandler(campaigns service.CampaignService, points service.PointsService, leaderboards service.LeaderboardService) *campaignHandler {
	return &campaignHandler{campaigns: campaigns, points: points, leaderboards: leaderboards}
}

// CampaignResponse is the portal projection of a campaign
type CampaignResponse struct {
	ID                   int64                `json:"id"`
	CreatorTelegramID    int64                `json:"creator_telegram_id"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	PointsPerTask        float64              `json:"points_per_task"`
	State                models.CampaignState `json:"state"`
	LeaderboardUpdatedAt *time.Time           `json:"leaderboard_updated_at,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

type campaignTaskResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	TaskOrder int16  `json:"task_order"`
}

type campaignDetailResponse struct {
	Campaign CampaignResponse       `json:"campaign"`
	Tasks    []campaignTaskResponse `json:"tasks"`
}

func toCampaignResponse(c *models.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:                   c.ID,
		CreatorTelegramID:    c.CreatorTelegramID,
		Title:                c.Title,
		Description:          c.Description,
		PointsPerTask:        c.PointsPerTask,
		State:                c.State,
		LeaderboardUpdatedAt: c.LeaderboardUpdatedAt,
		CreatedAt:            c.CreatedAt,
	}
}

func toCampaignDetailResponse(detail *models.CampaignDetail) campaignDetailResponse {
	tasks := make([]campaignTaskResponse, 0, len(detail.Tasks))
	for _, task := range detail.Tasks {
		tasks = append(tasks, campaignTaskResponse{
			ID:        task.ID,
			Title:     task.Title,
			TaskOrder: task.TaskOrder,
		})
	}
	return campaignDetailResponse{
		Campaign: toCampaignResponse(detail.Campaign),
		Tasks:    tasks,
	}
}

func (h *campaignHandler) handleList(w http.ResponseWriter, r *http.Request) {
	state := models.CampaignStateActive
	if s := r.URL.Query().Get("state"); s != "" {
		state = models.CampaignState(s)
		if !state.IsValid() {
			respondError(w, http.StatusBadRequest, "invalid state")
			return
		}
	}

	campaigns, err := h.campaigns.ListCampaigns(r.Context(), state)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]CampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, toCampaignResponse(campaign))
	}
	respondJSON(w, http.StatusOK, out)
}

type createCampaignRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=255"`
	Description   string   `json:"description" validate:"max=2000"`
	PointsPerTask float64  `json:"points_per_task" validate:"gte=0"`
	Tasks         []string `json:"tasks" validate:"required,min=1,max=50,dive,required,max=500"`
}

func (h *campaignHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := decodeAndValidate(r, w, &req); err != nil {
		return
	}

	detail, err := h.campaigns.CreateCampaign(r.Context(), callerID(r), req.Title, req.Description, req.PointsPerTask, req.Tasks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCampaignDetailResponse(detail))
}

func (h *campaignHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	detail, err := h.campaigns.GetCampaignDetail(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCampaignDetailResponse(detail))
}

func (h *campaignHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	if err := h.campaigns.ActivateCampaign(r.Context(), id, callerID(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "campaign activated"})
}

func (h *campaignHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	if err := h.campaigns.CloseCampaign(r.Context(), id, callerID(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "campaign closed"})
}

func (h *campaignHandler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathID(r, w, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(r, w, "taskID")
	if !ok {
		return
	}

	user, err := h.points.AwardTaskPoints(r.Context(), callerID(r), campaignID, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"telegram_id": user.TelegramID,
		"points":      user.Points,
		"tier":        user.Tier,
	})
}

func (h *campaignHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, w, "id")
	if !ok {
		return
	}

	entries, err := h.leaderboards.ComputeCampaignLeaderboard(r.Context(), id, limitParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *campaignHandler) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.ComputeGlobalLeaderboard(r.Context(), limitParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// limitParam reads an optional ?limit= query value; 0 means default
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
