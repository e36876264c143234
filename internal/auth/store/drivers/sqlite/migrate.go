package sqlite

import (
	"errors"

	"github.com/aussiebroadwan/taskauth/internal/auth/store/drivers/sqlite/migrations"
	"github.com/samber/oops"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations applies any pending migrations from the embedded
// migration files.
func (s *Store) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "sqlite migration driver")
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "migration source")
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "migrate instance")
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.In("store").Code("store_migrate").Wrapf(err, "apply migrations")
	}
	return nil
}
