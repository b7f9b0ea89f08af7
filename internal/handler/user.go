package handler

import (
	"log/slog"
	"net/http"

	"github.com/twinzy/goals/internal/service"
)

type UserHandler struct {
	userService    *service.UserService
	sessionService *service.SessionService
}

func NewUserHandler(userService *service.UserService, sessionService *service.SessionService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		sessionService: sessionService,
	}
}

// Provision creates the user on first sign-in and returns the stored record
// on every later one.
func (h *UserHandler) Provision(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, err, "Failed to create user")
		return
	}

	user, created, err := h.userService.Provision(r.Context(), payload)
	if err != nil {
		slog.Error("failed to provision user", "error", err)
		writeError(w, err, "Failed to create user")
		return
	}

	if h.sessionService.Enabled() {
		token, expiresAt, err := h.sessionService.Issue(user)
		if err != nil {
			slog.Error("failed to issue session", "error", err, "uid", user.UID)
		} else {
			h.sessionService.SetCookie(w, token, expiresAt)
		}
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

func (h *UserHandler) ByUID(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	user, err := h.userService.ByUID(r.Context(), uid)
	if err != nil {
		writeError(w, err, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
