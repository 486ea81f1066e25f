package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. When a Redis client is
// available the counters are shared across instances; otherwise an
// in-process memory store is used.
func RateLimiter(redisClient *goredis.Client) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  100,
	}

	var store limiter.Store
	if redisClient != nil {
		redisStore, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "kizuna:ratelimit",
		})
		if err != nil {
			log.Printf("rate limiter: redis store unavailable, falling back to memory: %v", err)
			store = memory.NewStore()
		} else {
			store = redisStore
		}
	} else {
		store = memory.NewStore()
	}

	instance := limiter.New(store, rate)
	return ginlimiter.NewMiddleware(instance)
}
