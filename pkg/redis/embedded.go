package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const embeddedClockTick = time.Second

// NewEmbedded starts an in-process Redis server and returns a Client connected to
// it. It serves single-instance local runs without a Redis deployment. miniredis
// only expires keys when its clock moves, so a ticker advances it in real time.
func NewEmbedded(ctx context.Context, logg *logger.Logger) (*Client, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("start embedded redis: %w", err)
	}
	server.SetTime(time.Now())

	raw := redis.NewClient(&redis.Options{Addr: server.Addr()})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		server.Close()
		return nil, fmt.Errorf("ping embedded redis: %w", err)
	}

	stop := make(chan struct{})
	go advanceClock(server, stop)

	if logg != nil {
		logg.Warn(logg.WithField(ctx, "redis_addr", server.Addr()), "using embedded redis; data is lost on restart")
	}

	client := Wrap(raw)
	client.shutdown = func() {
		close(stop)
		server.Close()
	}
	return client, nil
}

func advanceClock(server *miniredis.Miniredis, stop <-chan struct{}) {
	ticker := time.NewTicker(embeddedClockTick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			server.SetTime(now)
			server.FastForward(now.Sub(last))
			last = now
		}
	}
}
