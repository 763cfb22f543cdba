package store

import (
	"context"
	"errors"

	"github.com/voyagen/xtreamvault/internal/models"
)

var (
	// ErrNotFound is returned by lookups when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrNotOpen is returned when an operation runs outside Open/Close.
	ErrNotOpen = errors.New("store is not open")
)

// Store defines persistence for categories, channels, and settings.
//
// Operations must run between Open and Close. Open/Close calls nest: the
// connection is released when the last holder closes.
type Store interface {
	// Open acquires the connection.
	Open(ctx context.Context) error
	// Close releases the connection acquired by Open.
	Close() error

	// CategoryByName returns the category with the given name or ErrNotFound.
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	// InsertCategory inserts a category and returns its id.
	InsertCategory(ctx context.Context, name string, parentID int64) (int64, error)
	// ListCategories returns all categories ordered by id.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// ChannelByName returns the channel with the given name or ErrNotFound.
	ChannelByName(ctx context.Context, name string) (*models.Channel, error)
	// InsertChannel inserts a channel and returns its id.
	InsertChannel(ctx context.Context, ch *models.Channel) (int64, error)
	// ListChannels returns all channels ordered by id.
	ListChannels(ctx context.Context) ([]models.Channel, error)

	// GetSetting returns the value for key, or "" when unset.
	GetSetting(ctx context.Context, key string) (string, error)
	// SetSetting inserts or replaces the value for key.
	SetSetting(ctx context.Context, key, value string) error
}

// Drivers accepted by New.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// New returns an unopened Store for driver ("postgres" or "sqlite").
func New(driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres, "":
		return NewPostgres(dsn), nil
	case DriverSQLite:
		return NewSQLite(dsn), nil
	default:
		return nil, errors.New("unknown database driver: " + driver)
	}
}
