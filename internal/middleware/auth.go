package middleware

import (
	"net/http"
	"strings"

	"github.com/twinzy/goals/internal/ctxkeys"
	"github.com/twinzy/goals/internal/service"
)

// Session reads a session token from the auth cookie or a Bearer header and
// adds its uid to the context. Requests without a token continue anonymously;
// an invalid cookie is cleared.
func Session(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token, fromCookie := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, err := sessions.Verify(token)
			if err != nil {
				if fromCookie {
					sessions.ClearCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithSessionUID(r.Context(), uid)))
		})
	}
}

func sessionToken(r *http.Request) (token string, fromCookie bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), false
	}
	cookie, err := r.Cookie(service.SessionCookieName)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// RequireOwner rejects requests whose session belongs to a different uid than
// the path parameter. Anonymous requests pass through.
func RequireOwner(param string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := ctxkeys.SessionUID(r.Context())
		if uid != "" && uid != r.PathValue(param) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Forbidden"}`))
			return
		}
		next(w, r)
	}
}
