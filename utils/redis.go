package utils

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kizunalink/kizuna-backend/config"
)

// NewRedisClient connects to Redis for rate-limit counters. Returns nil
// when Redis is not configured; callers fall back to in-process stores.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("Redis not configured, using in-process fallbacks")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis ping failed (%v), using in-process fallbacks", err)
		return nil
	}

	log.Println("Redis connected:", cfg.RedisAddr)
	return client
}
