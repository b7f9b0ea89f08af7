package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinzy/goals/internal/config"
	"github.com/twinzy/goals/internal/ctxkeys"
	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/repository"
	"github.com/twinzy/goals/internal/service"
	"github.com/twinzy/goals/internal/validation"
)

// failingStorage rejects every create the way a backend without a live
// connection does.
type failingStorage struct {
	repository.Storage
}

func (failingStorage) UserByUID(ctx context.Context, uid string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (failingStorage) CreateUser(ctx context.Context, user *model.NewUser) (*model.User, error) {
	return nil, &repository.CreationError{Entity: "user", Err: errors.New("socket closed by 10.1.2.3")}
}

func (failingStorage) CreateGoal(ctx context.Context, goal *model.NewGoal) (*model.Goal, error) {
	return nil, &repository.CreationError{Entity: "goal", Err: errors.New("socket closed by 10.1.2.3")}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    &validation.Error{Fields: []validation.FieldError{{Field: "title", Message: "is required"}}},
			status: http.StatusBadRequest,
			body:   `{"message":"Invalid request data","errors":[{"field":"title","message":"is required"}]}`,
		},
		{
			name:   "user not found",
			err:    repository.ErrUserNotFound,
			status: http.StatusNotFound,
			body:   `{"message":"User not found"}`,
		},
		{
			name:   "goal not found wrapped",
			err:    errors.Join(errors.New("lookup"), repository.ErrGoalNotFound),
			status: http.StatusNotFound,
			body:   `{"message":"Goal not found"}`,
		},
		{
			name:   "internal",
			err:    errors.New("pq: password authentication failed"),
			status: http.StatusInternalServerError,
			body:   `{"message":"Something failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, "Something failed")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Read","progress":5}`))
		payload, err := decodePayload(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, "Read", payload["title"])
		assert.Equal(t, float64(5), payload["progress"])
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		payload, err := decodePayload(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Empty(t, payload)
	})

	t.Run("array is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1,2]`))
		_, err := decodePayload(httptest.NewRecorder(), req)
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("decoder detail stays out of the response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": tru`))
		_, err := decodePayload(httptest.NewRecorder(), req)
		require.Error(t, err)

		rec := httptest.NewRecorder()
		writeError(rec, err, "Failed to create goal")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid request data","errors":[{"field":"body","message":"must be a JSON object"}]}`, rec.Body.String())
	})
}

func TestCreationFailureDoesNotLeakCause(t *testing.T) {
	storage := failingStorage{}
	users := NewUserHandler(service.NewUserService(storage), service.NewSessionService("", 0, false))
	goals := NewGoalHandler(service.NewGoalService(storage))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/user", strings.NewReader(`{"uid":"u1","name":"Ann","email":"a@x.com"}`))
	users.Provision(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.1.2.3")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/goals", strings.NewReader(`{"userId":"u1","title":"Read","category":"Education"}`))
	goals.Create(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Failed to create goal"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(repository.NewMemoryStorage()).Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, rec.Body.String())
}

func TestHealthReportsEnvironment(t *testing.T) {
	cfg := &config.Config{AppName: "Goals", AppEnv: "production", MongoURI: "mongodb://user:pass@db"}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req = req.WithContext(ctxkeys.WithConfig(req.Context(), cfg.Sanitized()))

	rec := httptest.NewRecorder()
	NewHealthHandler(repository.NewMemoryStorage()).Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory","app":"Goals","env":"production"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "pass")
}
