package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreboard/internal/engine"
)

type DashboardHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewDashboardHandler(eng *engine.Engine, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{engine: eng, logger: logger}
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
