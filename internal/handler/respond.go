package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/twinzy/goals/internal/repository"
	"github.com/twinzy/goals/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps service and storage errors to a status code. Internal
// error text never reaches the client.
func writeError(w http.ResponseWriter, err error, internalMessage string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Invalid request data",
			Errors:  verr.Fields,
		})
	case errors.Is(err, repository.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrGoalNotFound):
		writeMessage(w, http.StatusNotFound, "Goal not found")
	default:
		writeMessage(w, http.StatusInternalServerError, internalMessage)
	}
}

// decodePayload reads a JSON object body. A malformed body is reported as a
// validation error so the caller answers 400.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	var payload map[string]any
	err := json.NewDecoder(body).Decode(&payload)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}
	if err != nil {
		slog.Warn("failed to decode request body", "error", err, "path", r.URL.Path)
		return nil, &validation.Error{Fields: []validation.FieldError{
			{Field: "body", Message: "must be a JSON object"},
		}}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}
