package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Locker provides short-lived mutual exclusion keyed by string. Used to keep
// one occurrence dispatch and one image reconciliation in flight at a time.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLocker implements Locker with SETNX on a dedicated Redis DB.
type RedisLocker struct {
	Client *redis.Client
	Prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{Client: client, Prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.Client.SetNX(ctx, l.Prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("RedisLocker: failed to acquire %s: %w", key, err)
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := l.Client.Del(ctx, l.Prefix+key).Err(); err != nil {
		return fmt.Errorf("RedisLocker: failed to release %s: %w", key, err)
	}
	return nil
}
