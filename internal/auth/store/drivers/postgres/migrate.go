package postgres

import (
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/taskauth/internal/auth/store/drivers/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

var errNoDSN = errors.New("postgres: migrations need a connection string")

// ApplyMigrations applies any pending migrations from the embedded
// migration files. It runs on its own short lived database/sql handle so
// the query pool is left alone.
func (s *Store) ApplyMigrations() error {
	if s.dsn == "" {
		return oops.In("store").Code("store_migrate").Wrap(errNoDSN)
	}

	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "open migration handle")
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "postgres migration driver")
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "migration source")
	}

	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return oops.In("store").Code("store_migrate").Wrapf(err, "migrate instance")
	}
	defer func() { _, _ = instance.Close() }()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.In("store").Code("store_migrate").Wrapf(err, "apply migrations")
	}
	return nil
}
