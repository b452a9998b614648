package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/choreboard/internal/auth"
	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type TaskHandler struct {
	broadcaster
	engine      *engine.Engine
	tasks       *store.TaskStore
	completions *store.CompletionStore
	notifier    Notifier
	logger      *slog.Logger
}

func NewTaskHandler(eng *engine.Engine, ts *store.TaskStore, cs *store.CompletionStore, notifier Notifier, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		broadcaster: broadcaster{hub},
		engine:      eng,
		tasks:       ts,
		completions: cs,
		notifier:    notifier,
		logger:      logger,
	}
}

func (h *TaskHandler) notify(events []engine.Event) {
	if h.notifier != nil && len(events) > 0 {
		h.notifier.Dispatch(events)
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.engine.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req engine.TaskInput
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.engine.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req engine.TaskInput
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.engine.UpdateTask(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// EffectiveAssignees handles GET /api/tasks/{id}/assignees/effective.
func (h *TaskHandler) EffectiveAssignees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.engine.EffectiveAssignees(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CanComplete handles GET /api/tasks/{id}/can-complete for the signed-in
// user, or for ?user_id= when a privileged user asks on someone's behalf.
func (h *TaskHandler) CanComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID := auth.UserID(r.Context())
	if v := r.URL.Query().Get("user_id"); v != "" && auth.IsPrivileged(r.Context()) {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid user_id")
			return
		}
		userID = uid
	}

	el, err := h.engine.CanComplete(r.Context(), id, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

type completeRequest struct {
	OnBehalfOf *int64 `json:"on_behalf_of"`
}

// Complete handles POST /api/tasks/{id}/complete. The body is optional.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.engine.Complete(r.Context(), engine.CompleteRequest{
		TaskID:     id,
		ActorID:    auth.UserID(r.Context()),
		OnBehalfOf: req.OnBehalfOf,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.notify(res.Events)
	h.broadcast(websocket.NewMessage("task", "completed", id, map[string]any{
		"user_id":       res.Completion.UserID,
		"completion_id": res.Completion.ID,
		"state":         res.State,
	}))
	writeJSON(w, http.StatusCreated, res)
}

// ListCompletions handles GET /api/completions?limit=.
func (h *TaskHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeBadRequest(w, "limit must be 1-500")
			return
		}
		limit = n
	}
	cs, err := h.completions.ListRecent(limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if cs == nil {
		cs = []model.TaskCompletion{}
	}
	writeJSON(w, http.StatusOK, cs)
}

// CancelCompletion handles DELETE /api/completions/{id}.
func (h *TaskHandler) CancelCompletion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.engine.CancelCompletion(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("completion", "cancelled", id, map[string]any{
		"task_id": res.Completion.TaskID,
		"user_id": res.Completion.UserID,
	}))
	writeJSON(w, http.StatusOK, res)
}
