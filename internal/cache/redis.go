package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Load when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// unlinkBatch bounds the keys sent per UNLINK while invalidating by pattern.
const unlinkBatch = 100

// Redis holds the client shared by the listing cache, the refresh lock and
// the refresh queue.
type Redis struct {
	client *redis.Client
}

// New builds a client from a redis:// URL. It does not dial; use Ping.
func New(rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Load decodes the JSON value cached under key.
func Load[T any](ctx context.Context, r *Redis, key string) (T, error) {
	var v T
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return v, ErrMiss
	case err != nil:
		return v, fmt.Errorf("cache load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return v, nil
}

// Save caches v as JSON under key for ttl.
func Save(ctx context.Context, r *Redis, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Invalidate drops the given keys. No keys is a no-op.
func Invalidate(ctx context.Context, r *Redis, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Unlink(ctx, keys...).Err()
}

// InvalidateMatching drops every key matching the glob pattern.
func InvalidateMatching(ctx context.Context, r *Redis, pattern string) error {
	batch := make([]string, 0, unlinkBatch)
	it := r.client.Scan(ctx, 0, pattern, unlinkBatch).Iterator()
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) == unlinkBatch {
			if err := Invalidate(ctx, r, batch...); err != nil {
				return fmt.Errorf("cache invalidate %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if err := Invalidate(ctx, r, batch...); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", pattern, err)
	}
	return nil
}
