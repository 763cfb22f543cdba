package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/voyagen/xtreamvault/internal/cache"
)

// mutexLock is the in-process Locker.
type mutexLock struct{ mu sync.Mutex }

func (l *mutexLock) TryLock(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrRefreshRunning
	}
	return l.mu.Unlock, nil
}

// RedisLock is a Locker shared by every process using the same Redis.
type RedisLock struct {
	Redis *cache.Redis
	// TTL bounds how long a crashed holder blocks others.
	TTL time.Duration
}

func (l RedisLock) TryLock(ctx context.Context) (func(), error) {
	release, err := cache.TryLock(ctx, l.Redis, cache.RefreshLockKey, l.TTL)
	if errors.Is(err, cache.ErrLocked) {
		return nil, ErrRefreshRunning
	}
	return release, err
}
