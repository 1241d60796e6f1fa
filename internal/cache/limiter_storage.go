package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "limiter:"

// LimiterStorage backs fiber's limiter middleware with Redis so request
// counters are shared between processes. It satisfies fiber.Storage.
type LimiterStorage struct {
	redis *redis.Client
}

func NewLimiterStorage(rdb *redis.Client) *LimiterStorage { return &LimiterStorage{redis: rdb} }

// Get returns nil, nil for a missing key, as fiber.Storage requires.
func (s *LimiterStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	b, err := s.redis.Get(context.Background(), limiterPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.redis.Set(context.Background(), limiterPrefix+key, val, exp).Err()
}

func (s *LimiterStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.redis.Del(context.Background(), limiterPrefix+key).Err()
}

// Reset removes every limiter key.
func (s *LimiterStorage) Reset() error {
	ctx := context.Background()
	iter := s.redis.Scan(ctx, 0, limiterPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is shared and closed by its owner.
func (s *LimiterStorage) Close() error { return nil }
