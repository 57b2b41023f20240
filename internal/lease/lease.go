// Package lease guards the document store against a second writer process.
// The store keeps the whole document in memory, so two processes pointed at
// the same backend would overwrite each other's changes.
package lease

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brandlink/engine/internal/identity"
	appErr "github.com/brandlink/engine/pkg/errors"
	"github.com/brandlink/engine/pkg/logger"
)

// ErrLost is returned when the lease expired or was taken over.
var ErrLost = errors.New("writer lease lost")

var (
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// Key returns the redis key guarding the named snapshot.
func Key(snapshot string) string {
	return "brandlink:writer:" + snapshot
}

// Lease is an exclusive, expiring claim on a redis key.
type Lease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// Acquire claims key for ttl. It fails with a conflict error when another
// holder has it.
func Acquire(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (*Lease, error) {
	token := identity.NewID()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "acquire writer lease")
	}
	if !ok {
		holder, _ := client.Get(ctx, key).Result()
		return nil, appErr.Conflict("writer lease %s is held", key).WithMeta("holder", holder)
	}
	logger.L().Info("writer lease acquired", zap.String("key", key), zap.Duration("ttl", ttl))
	return &Lease{client: client, key: key, token: token, ttl: ttl}, nil
}

// Token identifies this holder.
func (l *Lease) Token() string { return l.token }

// Refresh extends the lease by its ttl.
func (l *Lease) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "refresh writer lease")
	}
	if n == 0 {
		return ErrLost
	}
	return nil
}

// Keep refreshes the lease every third of its ttl until ctx is done. It
// returns nil on cancellation and an error once a refresh fails.
func (l *Lease) Keep(ctx context.Context) error {
	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.L().Error("writer lease refresh failed", zap.String("key", l.key), zap.Error(err))
				return err
			}
		}
	}
}

// Release drops the lease if it is still ours.
func (l *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "release writer lease")
	}
	logger.L().Info("writer lease released", zap.String("key", l.key))
	return nil
}
