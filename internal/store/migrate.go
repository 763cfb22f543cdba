package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/voyagen/xtreamvault/migrations"
)

// RunMigrations applies the embedded migrations for driver against dsn.
func RunMigrations(driver, dsn string) error {
	var (
		db       *sql.DB
		instance database.Driver
		err      error
	)
	switch driver {
	case DriverPostgres, "":
		driver = DriverPostgres
		if db, err = sql.Open("postgres", dsn); err != nil {
			return fmt.Errorf("open: %w", err)
		}
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		if db, err = sql.Open("sqlite", sqliteDSN(dsn)); err != nil {
			return fmt.Errorf("open: %w", err)
		}
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("unknown database driver: %s", driver)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		instance.Close()
		return fmt.Errorf("iofs.New: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		instance.Close()
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate.Up: %w", err)
	}
	return nil
}
