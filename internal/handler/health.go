package handler

import (
	"net/http"

	"github.com/twinzy/goals/internal/ctxkeys"
	"github.com/twinzy/goals/internal/repository"
)

type HealthHandler struct {
	storage repository.Storage
}

func NewHealthHandler(storage repository.Storage) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health reports the selected storage backend and, when the config
// middleware ran, the app name and environment.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":  "ok",
		"storage": h.storage.Name(),
	}
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		resp["app"] = cfg.AppName
		resp["env"] = cfg.AppEnv
	}
	writeJSON(w, http.StatusOK, resp)
}
