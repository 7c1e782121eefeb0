// Package migration applies versioned SQL migrations with golang-migrate
// over an open gorm connection.
//
// Files follow the VERSION_name.up.sql / VERSION_name.down.sql convention
// and are usually embedded:
//
//	//go:embed migrations
//	var Migrations embed.FS
//
//	err := migration.Up(db, Migrations, "migrations/postgres", migration.DriverFor("postgres"))
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// DriverFunc creates a migrate database driver from the pool.
type DriverFunc func(*sql.DB) (database.Driver, error)

// DriverFor returns the DriverFunc for a database driver name ("sqlite" or
// "postgres"), or nil for an unknown name.
func DriverFor(name string) DriverFunc {
	switch name {
	case "sqlite":
		return func(db *sql.DB) (database.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}
	case "postgres":
		return func(db *sql.DB) (database.Driver, error) {
			return migratepg.WithInstance(db, &migratepg.Config{})
		}
	default:
		return nil
	}
}

// Up applies all pending migrations. Having none to apply is not an error.
func Up(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) error {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back all applied migrations.
func Down(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) error {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps applies n migrations forward, or rolls back -n when n is negative.
func Steps(db *gorm.DB, fsys fs.FS, dir string, n int, driver DriverFunc) error {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	return nil
}

// Version returns the applied version and whether the last migration
// failed halfway. A database without migrations reports version 0.
func Version(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) (uint, bool, error) {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// newMigrator builds a migrator over db's pool. The migrator must not be
// closed; that would close the shared pool.
func newMigrator(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) (*migrate.Migrate, error) {
	if driver == nil {
		return nil, errors.New("migration: no driver for this database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	drv, err := driver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "database", drv)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
