package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const (
	defaultLockTTL   = 5 * time.Second
	defaultLockRetry = 25 * time.Millisecond
)

// Locker serializes read-modify-write cycles on one cart across API instances.
type Locker interface {
	Lock(ctx context.Context, token string) (unlock func(), err error)
}

type lockClient interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfEquals(ctx context.Context, key, expected string) (bool, error)
	CartLockKey(token string) string
}

// RedisLocker is a SETNX lease with a bounded TTL so a crashed holder cannot wedge a cart.
type RedisLocker struct {
	client lockClient
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client lockClient) (*RedisLocker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisLocker{client: client, ttl: defaultLockTTL, retry: defaultLockRetry}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, token string) (func(), error) {
	key := l.client.CartLockKey(token)
	owner, err := security.RandomToken(12)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquire cart lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire cart lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// The lease may have expired and been taken by another writer.
		_, _ = l.client.DelIfEquals(context.WithoutCancel(ctx), key, owner)
	}, nil
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
