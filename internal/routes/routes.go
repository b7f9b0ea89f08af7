package routes

import (
	"net/http"
	"time"

	"github.com/twinzy/goals/internal/app"
	"github.com/twinzy/goals/internal/handler"
	"github.com/twinzy/goals/internal/metrics"
	"github.com/twinzy/goals/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	user := handler.NewUserHandler(app.UserService, app.SessionService)
	goal := handler.NewGoalHandler(app.GoalService)
	dashboard := handler.NewDashboardHandler(app.GoalService)
	health := handler.NewHealthHandler(app.Storage)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// ============================================================================
	// USERS
	// ============================================================================

	// Provisioning is rate limited per client IP
	rateLimiter := middleware.NewRateLimiter(app.Cfg.RateLimitRPS, app.Cfg.RateLimitBurst)
	rateLimiter.StartCleanup(5*time.Minute, app.Done())

	mux.HandleFunc("POST /api/auth/user", rateLimiter.Limit(user.Provision))
	mux.HandleFunc("GET /api/auth/user/{uid}", middleware.RequireOwner("uid", user.ByUID))

	// ============================================================================
	// GOALS
	// ============================================================================

	mux.HandleFunc("GET /api/goals/{userId}", middleware.RequireOwner("userId", goal.List))
	mux.HandleFunc("GET /api/goals/{userId}/export", middleware.RequireOwner("userId", goal.Export))
	mux.HandleFunc("POST /api/goals", goal.Create)
	mux.HandleFunc("PATCH /api/goals/{id}", goal.Update)
	mux.HandleFunc("DELETE /api/goals/{id}", goal.Delete)

	// ============================================================================
	// DASHBOARD
	// ============================================================================

	mux.HandleFunc("GET /api/statistics/{userId}", middleware.RequireOwner("userId", dashboard.Statistics))
	mux.HandleFunc("GET /api/categories/{userId}", middleware.RequireOwner("userId", dashboard.Categories))

	// Apply global middleware
	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.Config(app.Cfg),
		middleware.Session(app.SessionService),
	)
}
