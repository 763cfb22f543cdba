package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagen/xtreamvault/internal/models"
)

// setupTestDB migrates a fresh SQLite file and returns the opened store.
func setupTestDB(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xtreamvault.db")
	require.NoError(t, RunMigrations(DriverSQLite, path))

	s := NewSQLite(path)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_categories(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	_, err := s.CategoryByName(ctx, "News")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := s.InsertCategory(ctx, "News", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	c, err := s.CategoryByName(ctx, "News")
	require.NoError(t, err)
	assert.Equal(t, models.Category{ID: id, Name: "News", ParentID: 0}, *c)

	_, err = s.InsertCategory(ctx, "News", 0)
	assert.Error(t, err, "category_name is unique")

	_, err = s.InsertCategory(ctx, "Sports", 0)
	require.NoError(t, err)
	all, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "News", all[0].Name)
	assert.Equal(t, "Sports", all[1].Name)
}

func TestSQLite_channels(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	catID, err := s.InsertCategory(ctx, "News", 0)
	require.NoError(t, err)

	ch := &models.Channel{
		Name:         "Channel A",
		StreamType:   models.StreamTypeLive,
		DirectSource: "http://stream/a.m3u8",
		StreamIcon:   "http://x/a.png",
		EPGChannelID: "n1",
		CategoryID:   &catID,
	}
	id, err := s.InsertChannel(ctx, ch)
	require.NoError(t, err)

	got, err := s.ChannelByName(ctx, "Channel A")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "http://stream/a.m3u8", got.DirectSource)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, catID, *got.CategoryID)
	assert.Equal(t, 0, got.TVArchive)

	_, err = s.InsertChannel(ctx, &models.Channel{Name: "No Group", StreamType: models.StreamTypeLive, DirectSource: "http://b"})
	require.NoError(t, err)

	all, err := s.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].CategoryID)

	_, err = s.ChannelByName(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_channelNameWithQuotes(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	name := `Say "Hi"; DROP TABLE iptv_channels; --`
	_, err := s.InsertChannel(ctx, &models.Channel{Name: name, StreamType: models.StreamTypeLive, DirectSource: "http://q"})
	require.NoError(t, err)

	got, err := s.ChannelByName(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
}

func TestSQLite_settings(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, models.SettingChannelLastUpdate)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetSetting(ctx, models.SettingChannelLastUpdate, "100"))
	require.NoError(t, s.SetSetting(ctx, models.SettingChannelLastUpdate, "200"))
	v, err = s.GetSetting(ctx, models.SettingChannelLastUpdate)
	require.NoError(t, err)
	assert.Equal(t, "200", v)
}

func TestSQLite_openClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.db")
	require.NoError(t, RunMigrations(DriverSQLite, path))
	// Second run is a no-op.
	require.NoError(t, RunMigrations(DriverSQLite, path))

	s := NewSQLite(path)
	ctx := context.Background()

	_, err := s.ListCategories(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Close())

	// Still held by the outer Open.
	_, err = s.ListCategories(ctx)
	assert.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = s.ListCategories(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)

	// Extra Close is harmless.
	assert.NoError(t, s.Close())
}

func TestNew(t *testing.T) {
	s, err := New(DriverSQLite, "x.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)

	s, err = New("", "postgres://localhost/x")
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, s)

	_, err = New("mysql", "")
	assert.Error(t, err)

	assert.Error(t, RunMigrations("mysql", ""))
}
