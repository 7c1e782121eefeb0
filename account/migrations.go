package account

import "embed"

// Migrations holds the versioned schema for the users table, one
// directory per database driver.
//
//go:embed migrations
var Migrations embed.FS

// MigrationDir returns the directory in Migrations for driver.
func MigrationDir(driver string) string {
	return "migrations/" + driver
}
