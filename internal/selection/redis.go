package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "selection:"

// RedisStore：多实例部署时共享选区，键为 selection:<session>，写入即刷新 TTL
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, session string, geometry []byte) error {
	if session == "" {
		return ErrEmptySession
	}
	if err := s.rdb.Set(ctx, keyPrefix+session, geometry, s.ttl).Err(); err != nil {
		return fmt.Errorf("selection: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, session string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, keyPrefix+session).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("selection: redis get: %w", err)
	}
	return b, true, nil
}
