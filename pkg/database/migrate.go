package database

import (
	"database/sql"
	"embed"
	stderrs "errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
)

//go:embed migrations
var migrations embed.FS

// Migrate brings the database schema up to date.
func Migrate(opts *Options) error {
	m, err := newMigrator(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if stderrs.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// MigrateDown removes the schema.
func MigrateDown(opts *Options) error {
	m, err := newMigrator(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Down()
	if stderrs.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func newMigrator(opts *Options) (*migrate.Migrate, error) {
	opts.SetDefaults()

	src, err := iofs.New(migrations, "migrations/"+opts.Driver)
	if err != nil {
		return nil, fmt.Errorf("%w no migrations for driver %s: %v", errors.ErrNotSupported, opts.Driver, err)
	}

	switch opts.Driver {
	case DriverPostgres:
		db, err := sql.Open("postgres", opts.ConnectionURL())
		if err != nil {
			return nil, err
		}
		driver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", src, DriverPostgres, driver)
	case DriverMySQL:
		db, err := openMySQL(opts, true)
		if err != nil {
			return nil, err
		}
		driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", src, DriverMySQL, driver)
	default:
		return nil, fmt.Errorf("%w driver %s", errors.ErrNotSupported, opts.Driver)
	}
}
