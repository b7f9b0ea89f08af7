package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twinzy/goals/internal/ctxkeys"
	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	goals, err := h.goalService.Goals(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get goals", "error", err, "user_id", userID)
		writeError(w, err, "Failed to load goals")
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, err, "Failed to create goal")
		return
	}

	// A session may only create goals for itself.
	if uid := ctxkeys.SessionUID(r.Context()); uid != "" {
		if owner, ok := payload["userId"].(string); ok && owner != uid {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
	}

	goal, err := h.goalService.Create(r.Context(), payload)
	if err != nil {
		slog.Error("failed to create goal", "error", err)
		writeError(w, err, "Failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")

	if !h.ownsGoal(w, r, goalID) {
		return
	}

	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, err, "Failed to update goal")
		return
	}

	goal, err := h.goalService.Update(r.Context(), goalID, payload)
	if err != nil {
		slog.Warn("failed to update goal", "error", err, "goal_id", goalID)
		writeError(w, err, "Failed to update goal")
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")

	if !h.ownsGoal(w, r, goalID) {
		return
	}

	deleted, err := h.goalService.Delete(r.Context(), goalID)
	if err != nil {
		slog.Error("failed to delete goal", "error", err, "goal_id", goalID)
		writeError(w, err, "Failed to delete goal")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Goal not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export sends all of a user's goals as a downloadable JSON document.
func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	goals, err := h.goalService.Goals(r.Context(), userID)
	if err != nil {
		slog.Error("failed to export goals", "error", err, "user_id", userID)
		writeError(w, err, "Failed to export goals")
		return
	}

	export := struct {
		ExportedAt time.Time     `json:"exportedAt"`
		UserID     string        `json:"userId"`
		Goals      []*model.Goal `json:"goals"`
	}{
		ExportedAt: time.Now().UTC(),
		UserID:     userID,
		Goals:      goals,
	}

	filename := fmt.Sprintf("goals-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, export)
}

// ownsGoal writes 403 when a session is present and the goal belongs to
// another uid. Missing goals fall through so the operation reports 404.
func (h *GoalHandler) ownsGoal(w http.ResponseWriter, r *http.Request, goalID string) bool {
	uid := ctxkeys.SessionUID(r.Context())
	if uid == "" {
		return true
	}

	goal, err := h.goalService.ByID(r.Context(), goalID)
	if err != nil {
		return true
	}
	if goal.UserID != uid {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
