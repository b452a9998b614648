package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dukerupert/choreboard/internal/coins"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type SettingsHandler struct {
	broadcaster
	engine   *engine.Engine
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(eng *engine.Engine, ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{broadcaster: broadcaster{hub}, engine: eng, settings: ss, logger: logger}
}

// GetVacation handles GET /api/settings/vacation
func (h *SettingsHandler) GetVacation(w http.ResponseWriter, r *http.Request) {
	v, err := h.engine.Vacation(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type vacationRequest struct {
	Active  bool   `json:"active"`
	EndDate string `json:"end_date"`
}

// UpdateVacation handles PUT /api/settings/vacation. end_date is YYYY-MM-DD.
func (h *SettingsHandler) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	var req vacationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var end *time.Time
	if req.EndDate != "" {
		t, err := time.ParseInLocation(time.DateOnly, req.EndDate, h.engine.Location())
		if err != nil {
			writeBadRequest(w, "end_date must be YYYY-MM-DD")
			return
		}
		end = &t
	}

	v, err := h.engine.SetVacation(r.Context(), req.Active, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("settings", "vacation", 0, map[string]any{"active": v.Active}))
	writeJSON(w, http.StatusOK, v)
}

// GetCoinPolicy handles GET /api/settings/coins
func (h *SettingsHandler) GetCoinPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.CoinPolicy(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateCoinPolicy handles PUT /api/settings/coins with an effort to coins map.
func (h *SettingsHandler) UpdateCoinPolicy(w http.ResponseWriter, r *http.Request) {
	var p coins.Policy
	if !decodeJSON(w, r, &p) {
		return
	}
	p, err := h.engine.SetCoinPolicy(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("settings", "coins", 0, nil))
	writeJSON(w, http.StatusOK, p)
}

// ResetCoinPolicy handles DELETE /api/settings/coins
func (h *SettingsHandler) ResetCoinPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.ResetCoinPolicy(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("settings", "coins", 0, nil))
	writeJSON(w, http.StatusOK, p)
}

// GetNotifications handles GET /api/settings/notifications
func (h *SettingsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]bool, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		on, err := h.settings.NotificationTypeEnabled(t)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		out[t] = on
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateNotifications handles PUT /api/settings/notifications
func (h *SettingsHandler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var req map[string]bool
	if !decodeJSON(w, r, &req) {
		return
	}
	for t := range req {
		if !slices.Contains(model.NotificationTypes, t) {
			writeBadRequest(w, "unknown notification type: "+t)
			return
		}
	}
	for t, on := range req {
		if err := h.settings.SetNotificationTypeEnabled(t, on); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	h.GetNotifications(w, r)
}
