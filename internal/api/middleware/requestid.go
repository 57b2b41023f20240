package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// Caller-supplied ids end up in logs and response headers, so only short
// token-like values are kept.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns the request an id, echoes it back and gives the request
// its own Sentry hub tagged with that id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !requestIDPattern.MatchString(id) {
			id = identity.NewID()
		}
		w.Header().Set(RequestIDHeader, id)

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("request_id", id)
		hub.Scope().SetRequest(r)

		ctx := identity.WithRequestID(r.Context(), id)
		ctx = sentry.SetHubOnContext(ctx, hub)
		ctx = context.WithValue(ctx, scopeKey{}, &requestScope{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestScope is shared by every middleware layer of one request. Identity
// runs inside Logging, so the caller it resolves is recorded here for the
// outer layers.
type requestScope struct {
	actor string
}

type scopeKey struct{}

func scopeOf(ctx context.Context) *requestScope {
	s, _ := ctx.Value(scopeKey{}).(*requestScope)
	return s
}

// RequestLogger returns the process logger annotated with the request id and
// the caller, if known.
func RequestLogger(ctx context.Context) *zap.Logger {
	l := logger.L().With(zap.String("request_id", identity.RequestID(ctx)))
	actor := identity.Actor(ctx)
	if s := scopeOf(ctx); actor == "" && s != nil {
		actor = s.actor
	}
	if actor != "" {
		l = l.With(zap.String("actor", actor))
	}
	return l
}

// hubFor returns the request's Sentry hub, or the process hub outside one.
func hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}
