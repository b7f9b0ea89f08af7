package middleware

import (
	"net/http"

	"github.com/twinzy/goals/internal/config"
	"github.com/twinzy/goals/internal/ctxkeys"
)

// Config middleware adds the sanitized app configuration to the request context.
// Connection strings and secrets are excluded.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
