package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

type mockStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerStartAndRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	accessID, err := manager.Start(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), store.data["sess:"+accessID])
	assert.Equal(t, time.Hour, store.ttls["sess:"+accessID])

	ok, err := manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, manager.Revoke(ctx, accessID))
	ok, err = manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, manager.Revoke(ctx, accessID), "revoking twice is harmless")
}

func TestManagerValidation(t *testing.T) {
	manager := newTestManager(newMockStore())
	ctx := context.Background()

	_, err := manager.Start(ctx, uuid.Nil)
	require.Error(t, err)
	_, err = manager.HasSession(ctx, " ")
	require.Error(t, err)
	require.Error(t, manager.Revoke(ctx, ""))
}

func TestHasSessionPropagatesStoreErrors(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	manager := newTestManager(store)

	_, err := manager.HasSession(context.Background(), "abc")
	require.Error(t, err)
}

func TestNewManagerWithRedisClient(t *testing.T) {
	_, err := NewManager(nil, config.JWTConfig{})
	require.Error(t, err)

	manager, err := NewManager(redistest.Client(t), config.JWTConfig{ExpirationMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, manager.TTL())

	ctx := context.Background()
	id, err := manager.Start(ctx, uuid.New())
	require.NoError(t, err)
	ok, err := manager.HasSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}
