package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arcade-rooms-backend/internal/config"
)

const keyRateLimit = "ratelimit:%s:%s"

const (
	RateLimitDice    = 30 // plays per minute
	RateLimitGrandma = 30
	RateLimitShop    = 60
)

// RedisService backs the per-user rate limiter. The rest of the state is
// in-memory; Redis is optional and the server runs without limits when it
// is not configured.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client, ctx: ctx}, nil
}

// CheckRateLimit counts the action in a fixed window and reports whether the
// caller is still under the limit.
func (s *RedisService) CheckRateLimit(userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(keyRateLimit, userID, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(userID, action string) error {
	key := fmt.Sprintf(keyRateLimit, userID, action)
	return s.client.Del(s.ctx, key).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
