package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 5 * time.Second

// ErrLockHeld is returned when another request owns the cart's mutation lock.
var ErrLockHeld = errors.New("cart mutation lock held")

// Locker serializes mutations per user. The returned release func must always be called.
type Locker interface {
	Lock(ctx context.Context, userID uuid.UUID) (func(context.Context) error, error)
}

// redisStore defines the operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfEquals(ctx context.Context, key, expected string) (bool, error)
	LockKey(scope, id string) string
}

// RedisLocker implements Locker with Redis SETNX plus TTL and an owner token.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

// Lock acquires the user's cart lock or fails fast with ErrLockHeld.
func (l *RedisLocker) Lock(ctx context.Context, userID uuid.UUID) (func(context.Context) error, error) {
	key := l.client.LockKey("cart", userID.String())
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return l.release(ctx, key, owner)
	}, nil
}

// release frees the lock only if the owner value still matches.
func (l *RedisLocker) release(ctx context.Context, key, owner string) error {
	if _, err := l.client.DeleteIfEquals(ctx, key, owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// NoopLocker is used when Redis is not configured; the version check still guards writes.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
