package store

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voyagen/xtreamvault/internal/cache"
	"github.com/voyagen/xtreamvault/internal/models"
)

// Cache keys and TTLs for the listings.
const (
	keyCategories = "xtreamvault:categories:all"
	keyChannels   = "xtreamvault:channels:all"

	ttlCategories = 5 * time.Minute
	ttlChannels   = 1 * time.Minute
)

// CachedStore wraps a Store with a Redis cache for the full listings.
// Inserts invalidate the listing they change.
type CachedStore struct {
	Store
	cache  *cache.Redis
	logger *log.Logger
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis, logger *log.Logger) *CachedStore {
	return &CachedStore{Store: inner, cache: c, logger: logger}
}

func (c *CachedStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if v, err := cache.Load[[]models.Category](ctx, c.cache, keyCategories); err == nil {
		return v, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("cache get", "key", keyCategories, "err", err)
	}
	categories, err := c.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Save(ctx, c.cache, keyCategories, categories, ttlCategories); err != nil {
		c.logger.Warn("cache set", "key", keyCategories, "err", err)
	}
	return categories, nil
}

func (c *CachedStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	if v, err := cache.Load[[]models.Channel](ctx, c.cache, keyChannels); err == nil {
		return v, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("cache get", "key", keyChannels, "err", err)
	}
	channels, err := c.Store.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Save(ctx, c.cache, keyChannels, channels, ttlChannels); err != nil {
		c.logger.Warn("cache set", "key", keyChannels, "err", err)
	}
	return channels, nil
}

func (c *CachedStore) InsertCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	id, err := c.Store.InsertCategory(ctx, name, parentID)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, keyCategories)
	return id, nil
}

func (c *CachedStore) InsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	id, err := c.Store.InsertChannel(ctx, ch)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, keyChannels)
	return id, nil
}

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Invalidate(ctx, c.cache, keys...); err != nil {
		c.logger.Warn("cache del", "keys", keys, "err", err)
	}
}

// Purge drops every cached listing.
func (c *CachedStore) Purge(ctx context.Context) error {
	return cache.InvalidateMatching(ctx, c.cache, "xtreamvault:*:all")
}
