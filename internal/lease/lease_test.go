package lease

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/brandlink/engine/pkg/errors"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestAcquireIsExclusive(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	key := Key("primary")

	first, err := Acquire(ctx, client, key, time.Minute)
	require.NoError(t, err)
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, first.Token(), got)

	_, err = Acquire(ctx, client, key, time.Minute)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists(key))

	second, err := Acquire(ctx, client, key, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token(), second.Token())
}

func TestRefreshExtendsAndDetectsLoss(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	key := Key("primary")

	l, err := Acquire(ctx, client, key, 10*time.Second)
	require.NoError(t, err)

	mr.FastForward(8 * time.Second)
	require.NoError(t, l.Refresh(ctx))
	assert.Equal(t, 10*time.Second, mr.TTL(key))

	mr.FastForward(11 * time.Second)
	assert.ErrorIs(t, l.Refresh(ctx), ErrLost)
}

func TestReleaseLeavesForeignHolderAlone(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	key := Key("primary")

	l, err := Acquire(ctx, client, key, 10*time.Second)
	require.NoError(t, err)
	mr.FastForward(11 * time.Second)

	other, err := Acquire(ctx, client, key, 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, l.Release(ctx))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, other.Token(), got)
}

func TestKeepStopsOnCancelAndOnLoss(t *testing.T) {
	mr, client := newRedis(t)
	key := Key("primary")

	l, err := Acquire(context.Background(), client, key, 30*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Keep(ctx) }()
	time.Sleep(40 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Keep did not return after cancel")
	}

	mr.Del(key)
	go func() { done <- l.Keep(context.Background()) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrLost)
	case <-time.After(time.Second):
		t.Fatal("Keep did not notice the lost lease")
	}
}
