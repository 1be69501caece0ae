// Package passlock keeps two ingestion passes from running at the same time
// across processes.
package passlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"news-quiz/config"
)

// ErrLocked is returned by Acquire when another holder owns the lock.
var ErrLocked = errors.New("ingestion pass already running")

// Locker acquires a named lock. The returned release func is safe to call
// once the pass finishes.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// Noop always succeeds.
type Noop struct{}

func (Noop) Acquire(ctx context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// 토큰이 일치할 때만 삭제한다. TTL 이 지나 다른 프로세스가 잡은 락을 지우지 않기 위함.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire sets key with NX and a PX expiry. The expiry bounds how long a
// crashed pass can block the next one.
func (l *RedisLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}, nil
}

// New returns a RedisLock when an address is configured (REDIS_ADDR env
// wins over config), Noop otherwise. The client is pinged once.
func New(ctx context.Context, cfg config.RedisConfig) (Locker, func() error, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = cfg.Addr
	}
	if addr == "" {
		return Noop{}, func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisLock(rdb, cfg.LockKey, cfg.LockTTL), rdb.Close, nil
}
