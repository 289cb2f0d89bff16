package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "leave-portal:session"

// RedisStore keeps the slot under one redis key, for portals that run on a
// shared host and must not write to the user's home directory.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

func NewRedisStore(rdb redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Get(ctx context.Context) (Session, error) {
	val, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("redis get session: %w", err)
	}
	return decodeSession([]byte(val))
}

func (r *RedisStore) Set(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}
