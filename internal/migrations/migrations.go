// Package migrations embeds the schema for each supported database driver
// and applies it with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	dbsys "github.com/JaimeStill/idscan/pkg/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Source returns the embedded migration source for driver.
func Source(driver string) (source.Driver, error) {
	switch driver {
	case dbsys.DriverPostgres, dbsys.DriverSQLite:
		return iofs.New(files, driver)
	}
	return nil, fmt.Errorf("no migrations for driver %q", driver)
}

// Open creates a migrator for db. The returned release func frees the
// connection held for Postgres; the pool itself stays open, so the
// migrator must not be closed with Close.
func Open(ctx context.Context, db *sql.DB, driver string) (*migrate.Migrate, func(), error) {
	src, err := Source(driver)
	if err != nil {
		return nil, nil, err
	}

	release := func() {}

	var target database.Driver
	switch driver {
	case dbsys.DriverPostgres:
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire connection: %w", err)
		}
		release = func() { conn.Close() }

		target, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("postgres migration driver: %w", err)
		}
	case dbsys.DriverSQLite:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite migration driver: %w", err)
		}
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, release, nil
}

// Up applies every pending migration to db. The pool stays open.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	m, release, err := Open(ctx, db, driver)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
