package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	prev := ""
	for range 1000 {
		id := NewID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", Actor(ctx))
	assert.Equal(t, "u-1", Actor(WithActor(ctx, "u-1")))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))
	ctx = WithActor(WithRequestID(ctx, "req-1"), "u-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "u-1", Actor(ctx))
}
