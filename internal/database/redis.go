package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/facegate/backend/internal/config"
)

// InitRedis initializes the Redis client used for session invalidation.
// The server keeps working without Redis; logged-out sessions then simply
// expire with their cookie.
func InitRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed, continuing without Redis: %v", err)
		return nil
	}

	log.Println("Redis connection established")
	return rdb
}
