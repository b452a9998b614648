package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type RewardHandler struct {
	broadcaster
	engine   *engine.Engine
	rewards  *store.RewardStore
	notifier Notifier
	logger   *slog.Logger
}

func NewRewardHandler(eng *engine.Engine, rs *store.RewardStore, notifier Notifier, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{broadcaster: broadcaster{hub}, engine: eng, rewards: rs, notifier: notifier, logger: logger}
}

type rewardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoinCost    int    `json:"coin_cost"`
	Active      *bool  `json:"active"`
}

func (req *rewardRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.CoinCost < 0 {
		return "coin_cost must not be negative"
	}
	return ""
}

func (req *rewardRequest) active() bool {
	return req.Active == nil || *req.Active
}

// List handles GET /api/rewards. Admins see inactive rewards too.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.List(!auth.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}
	rw, err := h.rewards.Create(req.Title, req.Description, req.CoinCost, req.active())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("reward", "created", rw.ID, nil))
	writeJSON(w, http.StatusCreated, rw)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}
	rw, err := h.rewards.Update(id, req.Title, req.Description, req.CoinCost, req.active())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if rw == nil {
		writeError(w, h.logger, apperr.New(apperr.RewardNotFound, "reward %d", id))
		return
	}
	h.broadcast(websocket.NewMessage("reward", "updated", rw.ID, nil))
	writeJSON(w, http.StatusOK, rw)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.rewards.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("reward", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Redeem handles POST /api/rewards/{id}/redeem for the signed-in user.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID := auth.UserID(r.Context())
	red, events, err := h.engine.RequestReward(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if h.notifier != nil && len(events) > 0 {
		h.notifier.Dispatch(events)
	}
	h.broadcast(websocket.NewMessage("redemption", "created", red.ID, map[string]any{"user_id": userID}))
	writeJSON(w, http.StatusCreated, red)
}

// ListRedemptions handles GET /api/redemptions. Non-admins only see their own.
func (h *RewardHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if !auth.IsAdmin(r.Context()) {
		id := auth.UserID(r.Context())
		userID = &id
	}
	reds, err := h.rewards.ListRedemptions(userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if reds == nil {
		reds = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, reds)
}

// CancelRedemption handles DELETE /api/redemptions/{id} and refunds the coins.
func (h *RewardHandler) CancelRedemption(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	red, balance, err := h.engine.CancelRedemption(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("redemption", "cancelled", red.ID, map[string]any{"user_id": red.UserID}))
	writeJSON(w, http.StatusOK, map[string]any{"redemption": red, "balance": balance})
}
