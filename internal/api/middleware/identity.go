package middleware

import (
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v5"

	"github.com/brandlink/engine/internal/identity"
)

// UserIDHeader carries the caller id for service-to-service calls.
const UserIDHeader = "X-User-ID"

// Identity puts the caller id into the request context. Tokens are verified by
// the gateway in front of this service, so only the sub claim is read here.
// Requests without a caller pass through anonymously.
func Identity(next http.Handler) http.Handler {
	parser := jwt.NewParser()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if ah := r.Header.Get("Authorization"); uid == "" && strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			claims := jwt.MapClaims{}
			if _, _, err := parser.ParseUnverified(strings.TrimSpace(ah[len("Bearer "):]), claims); err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			uid, _ = claims.GetSubject()
		}
		if uid == "" {
			next.ServeHTTP(w, r)
			return
		}
		if s := scopeOf(r.Context()); s != nil {
			s.actor = uid
		}
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: uid})
		}
		next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), uid)))
	})
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.Actor(r.Context()) == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
