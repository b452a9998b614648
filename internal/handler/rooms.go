package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/engine"
	"github.com/dukerupert/choreboard/internal/health"
	"github.com/dukerupert/choreboard/internal/store"
	"github.com/dukerupert/choreboard/internal/websocket"
)

type RoomHandler struct {
	broadcaster
	engine *engine.Engine
	rooms  *store.RoomStore
	tasks  *store.TaskStore
	logger *slog.Logger
}

func NewRoomHandler(eng *engine.Engine, rs *store.RoomStore, ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{broadcaster: broadcaster{hub}, engine: eng, rooms: rs, tasks: ts, logger: logger}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.engine.Rooms(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Tasks handles GET /api/rooms/{id}/tasks and returns scored tasks.
func (h *RoomHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListByRoom(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	vac, err := h.engine.Vacation(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	scored := health.Score(tasks, vac, h.engine.Now())
	if scored == nil {
		scored = []health.Scored{}
	}
	writeJSON(w, http.StatusOK, scored)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req engine.RoomInput
	if !decodeJSON(w, r, &req) {
		return
	}
	room, err := h.engine.SaveRoom(r.Context(), 0, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("room", "created", room.ID, nil))
	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req engine.RoomInput
	if !decodeJSON(w, r, &req) {
		return
	}
	room, err := h.engine.SaveRoom(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("room", "updated", room.ID, nil))
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.rooms.Delete(id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("room", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PUT /api/rooms/order with a JSON array of room ids.
func (h *RoomHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if !decodeJSON(w, r, &ids) {
		return
	}
	if err := h.engine.ReorderRooms(r.Context(), ids); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(websocket.NewMessage("room", "reordered", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}
