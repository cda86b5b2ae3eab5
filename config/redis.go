package config

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a global Redis client instance, nil when REDIS_ADDR is unset or unreachable.
var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})
}

// PingRedis disables Redis when the server cannot be reached and returns a status line.
func PingRedis(ctx context.Context) string {
	if RedisClient == nil {
		return "Redis not configured, using in-process cache."
	}
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		RedisClient = nil
		return "Redis configured but not reachable, using in-process cache."
	}
	return "Redis connection successful."
}

func RedisCtx() context.Context {
	return context.Background()
}
