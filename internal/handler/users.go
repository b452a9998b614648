package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/choreboard/internal/apperr"
	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type UserHandler struct {
	broadcaster
	users  *store.UserStore
	engine *engine.Engine
	logger *slog.Logger
}

func NewUserHandler(us *store.UserStore, eng *engine.Engine, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{broadcaster: broadcaster{hub}, users: us, engine: eng, logger: logger}
}

type userRequest struct {
	Name           string     `json:"name"`
	Role           model.Role `json:"role"`
	Color          string     `json:"color"`
	AvatarEmoji    string     `json:"avatar_emoji"`
	TelegramChatID *int64     `json:"telegram_chat_id"`
}

func (req *userRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.New(apperr.InvalidInput, "name is required")
	}
	if req.Role == "" {
		req.Role = model.RoleChild
	}
	if !req.Role.Valid() {
		return apperr.New(apperr.InvalidInput, "unknown role %q", req.Role)
	}
	return nil
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if user == nil {
		writeError(w, h.logger, apperr.New(apperr.UserNotFound, "user %d", id))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.Create(req.Name, req.Role, req.Color, req.AvatarEmoji)
	if err == nil && req.TelegramChatID != nil {
		user, err = h.users.Update(user.ID, user.Name, user.Role, user.Color, user.AvatarEmoji, req.TelegramChatID)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", user.ID, nil))
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if existing == nil {
		writeError(w, h.logger, apperr.New(apperr.UserNotFound, "user %d", id))
		return
	}

	user, err := h.users.Update(id, req.Name, req.Role, req.Color, req.AvatarEmoji, req.TelegramChatID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("user", "updated", id, nil))
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if id == auth.UserID(r.Context()) {
		writeBadRequest(w, "cannot delete yourself")
		return
	}
	if err := h.users.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("user", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// SetPIN handles POST /api/users/{id}/pin. Users may set their own PIN;
// admins may set anyone's. An empty PIN clears it.
func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if id != auth.UserID(r.Context()) && !auth.IsAdmin(r.Context()) {
		writeError(w, h.logger, apperr.New(apperr.AdminOnly, "only admins can set other users' PINs"))
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var hash string
	if req.PIN != "" {
		if len(req.PIN) < 4 || len(req.PIN) > 8 || !isDigits(req.PIN) {
			writeBadRequest(w, "PIN must be 4 to 8 digits")
			return
		}
		b, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		hash = string(b)
	}

	if err := h.users.SetPIN(id, hash); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustCoins handles POST /api/users/{id}/coins.
func (h *UserHandler) AdjustCoins(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	balance, err := h.engine.AdjustCoins(r.Context(), auth.UserID(r.Context()), id, req.Delta)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("user", "coins", id, map[string]any{"balance": balance}))
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// Achievements handles GET /api/users/{id}/achievements.
func (h *UserHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	stats, err := h.engine.Stats(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	progress, err := h.engine.EvaluateAchievements(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":        stats,
		"achievements": progress,
	})
}

// Quests handles GET /api/users/{id}/quests.
func (h *UserHandler) Quests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	quests, err := h.engine.QuestsFor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
