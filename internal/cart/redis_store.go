package cart

import (
	"context"
	"fmt"
	"time"
)

type hashClient interface {
	HashGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	HashSet(ctx context.Context, key string, values map[string]string, ttl time.Duration) error
	CartKey(token string) string
}

// RedisStore keeps each cart in one redis hash with one field per slot. Writing
// both slots is a single HSET, so a move between lists is never half-persisted.
type RedisStore struct {
	client hashClient
	ttl    time.Duration
}

func NewRedisStore(client hashClient, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string, slots ...string) (map[string][]byte, error) {
	values, err := s.client.HashGet(ctx, s.client.CartKey(key), slots...)
	if err != nil {
		return nil, fmt.Errorf("load cart slots: %w", err)
	}
	out := make(map[string][]byte, len(values))
	for slot, value := range values {
		out[slot] = []byte(value)
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, slots map[string][]byte) error {
	values := make(map[string]string, len(slots))
	for slot, blob := range slots {
		values[slot] = string(blob)
	}
	if err := s.client.HashSet(ctx, s.client.CartKey(key), values, s.ttl); err != nil {
		return fmt.Errorf("save cart slots: %w", err)
	}
	return nil
}
