package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twinzy/goals/internal/app"
	"github.com/twinzy/goals/internal/config"
	"github.com/twinzy/goals/internal/model"
	"github.com/twinzy/goals/internal/service"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppName:            "Goals",
		AppEnv:             "development",
		StorageBackend:     config.StorageMemory,
		JWTExpiry:          time.Hour,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close(context.Background())
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProvisionUser(t *testing.T) {
	srv := newTestServer(t, nil)
	payload := map[string]any{"uid": "u1", "name": "Ann", "email": "a@x.com"}

	resp := do(t, srv, http.MethodPost, "/api/auth/user", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.User](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UID)

	resp = do(t, srv, http.MethodPost, "/api/auth/user", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[model.User](t, resp)
	assert.Equal(t, created.ID, again.ID)

	resp = do(t, srv, http.MethodGet, "/api/auth/user/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[model.User](t, resp))

	resp = do(t, srv, http.MethodGet, "/api/auth/user/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProvisionUser_ValidationError(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodPost, "/api/auth/user", map[string]any{"uid": "u1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[struct {
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}](t, resp)
	assert.NotEmpty(t, body.Message)

	var fields []string
	for _, e := range body.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := srv.Client().Post(srv.URL+"/api/goals", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"userId": "u1", "title": "Run 5k", "category": "Health", "progress": 100, "isCompleted": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"userId": "u1", "title": "Stretch daily", "category": "Health", "progress": 30, "deadline": "2030-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[model.Goal](t, resp)
	require.NotNil(t, second.Deadline)

	resp = do(t, srv, http.MethodGet, "/api/statistics/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.GoalStatistics{TotalGoals: 2, CompletedGoals: 1, InProgressGoals: 1, CompletionRate: 50},
		decode[model.GoalStatistics](t, resp))

	resp = do(t, srv, http.MethodGet, "/api/categories/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []model.CategoryCount{{Category: "Health", Count: 2}}, decode[[]model.CategoryCount](t, resp))

	resp = do(t, srv, http.MethodPatch, "/api/goals/"+second.ID, map[string]any{"progress": 75})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Goal](t, resp)
	assert.Equal(t, 75, updated.Progress)
	assert.Equal(t, second.Title, updated.Title)
	assert.Equal(t, second.Category, updated.Category)
	assert.False(t, updated.IsCompleted)

	resp = do(t, srv, http.MethodGet, "/api/goals/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	goals := decode[[]model.Goal](t, resp)
	require.Len(t, goals, 2)
	assert.Equal(t, second.ID, goals[0].ID)

	resp = do(t, srv, http.MethodDelete, "/api/goals/"+second.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/api/goals/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPatch, "/api/goals/"+second.ID, map[string]any{"progress": 10})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmptyUserViews(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodGet, "/api/goals/ghost", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Goal](t, resp))

	resp = do(t, srv, http.MethodGet, "/api/statistics/ghost", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.GoalStatistics{}, decode[model.GoalStatistics](t, resp))

	resp = do(t, srv, http.MethodGet, "/api/categories/ghost", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decode[[]model.CategoryCount](t, resp)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestCreateGoal_ValidationError(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodPost, "/api/goals", map[string]any{"userId": "u1", "title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"userId": "u1", "title": "t", "category": "Health", "progress": 12.5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportGoals(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodPost, "/api/goals", map[string]any{"userId": "u1", "title": "Read", "category": "Education"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/goals/u1/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	export := decode[struct {
		UserID string       `json:"userId"`
		Goals  []model.Goal `json:"goals"`
	}](t, resp)
	assert.Equal(t, "u1", export.UserID)
	assert.Len(t, export.Goals, 1)
}

func TestSessionOwnership(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.JWTSecret = "test-secret"
	})

	resp := do(t, srv, http.MethodPost, "/api/auth/user", map[string]any{"uid": "u1", "name": "Ann", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == service.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	resp = do(t, srv, http.MethodGet, "/api/goals/u1", nil, session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/goals/u2", nil, session)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/goals", map[string]any{"userId": "u2", "title": "t", "category": "Health"}, session)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Anonymous requests are not restricted
	resp = do(t, srv, http.MethodPost, "/api/goals", map[string]any{"userId": "u2", "title": "t", "category": "Health"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	other := decode[model.Goal](t, resp)

	resp = do(t, srv, http.MethodDelete, "/api/goals/"+other.ID, nil, session)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProvisionRateLimited(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
	})
	payload := map[string]any{"uid": "u1", "name": "Ann", "email": "a@x.com"}

	resp := do(t, srv, http.MethodPost, "/api/auth/user", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/auth/user", payload)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok", "storage": "memory", "app": "Goals", "env": "development"},
		decode[map[string]string](t, resp))

	resp = do(t, srv, http.MethodGet, "/api/goals/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `backend="memory"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/goals/g1", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
