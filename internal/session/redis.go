package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "triage:session:"

// RedisStore persists session memories in Redis, one JSON value per session
// key. Replaces the single shared session file of earlier revisions so
// concurrent sessions cannot clobber each other.
type RedisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to Redis and returns a keyed session store.
func NewRedisStore(redisURL string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

// Close shuts down the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Load fetches the memory for a session key. A missing or corrupt record
// yields a fresh empty memory, never an error.
func (s *RedisStore) Load(ctx context.Context, key string) (*Memory, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return NewMemory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}

	var mem Memory
	if err := json.Unmarshal(data, &mem); err != nil {
		s.logger.Warn("corrupt session record, starting fresh",
			zap.String("key", key), zap.Error(err))
		return NewMemory(), nil
	}
	return &mem, nil
}

// Save writes the memory for a session key.
func (s *RedisStore) Save(ctx context.Context, key string, mem *Memory) error {
	data, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}
