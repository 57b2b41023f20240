// Package identity issues entity identifiers and carries the caller identity
// through a context.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// NewID returns a UUIDv7: a millisecond timestamp followed by random bits,
// monotonic within the process.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type actorKey struct{}

// WithActor returns a context carrying the already-validated caller id.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// Actor returns the caller id stored in ctx, or "" for system calls.
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the id of the request being served.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or "" outside a request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
