package ctxkeys

import (
	"context"

	"github.com/twinzy/goals/internal/config"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	SessionUIDKey contextKey = "session_uid"
	RequestIDKey  contextKey = "request_id"
	ConfigKey     contextKey = "config"
)

// SessionUID returns the uid of a verified session, or "" for anonymous requests.
func SessionUID(ctx context.Context) string {
	uid, _ := ctx.Value(SessionUIDKey).(string)
	return uid
}

func WithSessionUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, SessionUIDKey, uid)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}
