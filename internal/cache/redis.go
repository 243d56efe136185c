package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore persists entries in redis, delegating expiry to key TTLs.
// Useful when several replicas should share one synthesis cache.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

const redisKeyPrefix = "rem:synth:"

func (s *redisStore) Get(ctx context.Context, key string) (*Entry, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *redisStore) Put(ctx context.Context, key string, entry *Entry) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, val, s.ttl).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
