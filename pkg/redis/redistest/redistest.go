// Package redistest connects a storefront redis Client to a throwaway miniredis
// server for tests.
package redistest

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// New returns a Client and the server behind it. Use the server's FastForward to
// expire keys. Both are closed when the test ends.
func New(tb testing.TB) (*redis.Client, *miniredis.Miniredis) {
	tb.Helper()
	server := miniredis.RunT(tb)
	raw := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	tb.Cleanup(func() { _ = raw.Close() })
	return redis.Wrap(raw), server
}

// Client is New for tests that never touch the server directly.
func Client(tb testing.TB) *redis.Client {
	tb.Helper()
	client, _ := New(tb)
	return client
}
