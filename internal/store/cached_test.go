package store

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagen/xtreamvault/internal/cache"
	"github.com/voyagen/xtreamvault/internal/models"
)

func setupCachedStore(t *testing.T) (*CachedStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cache.New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return NewCachedStore(setupTestDB(t), r, log.New(io.Discard)), mr
}

func TestCachedStore_listingsCachedAndInvalidated(t *testing.T) {
	c, mr := setupCachedStore(t)
	ctx := context.Background()

	_, err := c.InsertCategory(ctx, "News", 0)
	require.NoError(t, err)

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.True(t, mr.Exists(keyCategories))

	_, err = c.InsertCategory(ctx, "Sports", 0)
	require.NoError(t, err)
	assert.False(t, mr.Exists(keyCategories))

	cats, err = c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	chans, err := c.ListChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, chans)
	assert.True(t, mr.Exists(keyChannels))

	_, err = c.InsertChannel(ctx, &models.Channel{Name: "A", StreamType: models.StreamTypeLive, DirectSource: "http://a"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(keyChannels))

	chans, err = c.ListChannels(ctx)
	require.NoError(t, err)
	assert.Len(t, chans, 1)
}

func TestCachedStore_servesFromCache(t *testing.T) {
	c, mr := setupCachedStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(keyCategories, `[{"category_id":9,"category_name":"Cached","parent_id":0}]`))
	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{ID: 9, Name: "Cached"}}, cats)

	require.NoError(t, c.Purge(ctx))
	assert.False(t, mr.Exists(keyCategories))
}

func TestCachedStore_passthrough(t *testing.T) {
	c, _ := setupCachedStore(t)
	ctx := context.Background()

	require.NoError(t, c.SetSetting(ctx, "k", "v"))
	v, err := c.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
