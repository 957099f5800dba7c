package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/walletledger/internal/domain"
)

// releaseScript deletes the key only when it still carries our token, so a
// lock that expired and was re-acquired is never released by the old owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyLock guards against two concurrent requests carrying the same
// idempotency key for the same wallet. It is not the durable record; the engine is.
type IdempotencyLock struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewIdempotencyLock creates a new IdempotencyLock.
func NewIdempotencyLock(client *redis.Client, ttl time.Duration) *IdempotencyLock {
	return &IdempotencyLock{
		client: client,
		prefix: "idempotency:",
		ttl:    ttl,
	}
}

func (l *IdempotencyLock) key(tenantID, walletID, idempotencyKey string) string {
	return l.prefix + tenantID + ":" + walletID + ":" + idempotencyKey
}

// Acquire takes the lock for (tenant, wallet, key) or fails with
// domain.ErrRequestInFlight. The returned release function must be called
// once the request completes.
func (l *IdempotencyLock) Acquire(ctx context.Context, tenantID, walletID, idempotencyKey, token string) (func(context.Context) error, error) {
	key := l.key(tenantID, walletID, idempotencyKey)

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRequestInFlight
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release idempotency lock: %w", err)
		}
		return nil
	}
	return release, nil
}
