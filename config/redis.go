package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when no address is configured or the server is
// unreachable; callers treat a nil client as "caching disabled".
func ConnectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, report caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("could not connect to redis, report caching disabled", "error", err, "addr", addr)
		_ = rdb.Close()
		return nil
	}

	slog.Info("connected to redis", "addr", addr)
	return rdb
}
