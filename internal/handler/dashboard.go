package handler

import (
	"log/slog"
	"net/http"

	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/service"
)

// DashboardHandler serves the aggregate views shown on a user's dashboard.
type DashboardHandler struct {
	goalService *service.GoalService
}

func NewDashboardHandler(goalService *service.GoalService) *DashboardHandler {
	return &DashboardHandler{
		goalService: goalService,
	}
}

func (h *DashboardHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	stats, err := h.goalService.Statistics(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get statistics", "error", err, "user_id", userID)
		writeError(w, err, "Failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	categories, err := h.goalService.Categories(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get categories", "error", err, "user_id", userID)
		writeError(w, err, "Failed to load categories")
		return
	}
	if categories == nil {
		categories = []model.CategoryCount{}
	}

	writeJSON(w, http.StatusOK, categories)
}
