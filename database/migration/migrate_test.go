package migration_test

import (
	"context"
	"testing"
	"testing/fstest"

	"gorm.io/gorm"

	"github.com/kbukum/feedback/database"
	"github.com/kbukum/feedback/database/migration"
	"github.com/kbukum/feedback/logger"
)

var testMigrations = fstest.MapFS{
	"sql/1_create_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);")},
	"sql/1_create_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
	"sql/2_add_author.up.sql":     {Data: []byte("ALTER TABLE notes ADD COLUMN author TEXT;")},
	"sql/2_add_author.down.sql":   {Data: []byte("ALTER TABLE notes DROP COLUMN author;")},
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		DSN:        ":memory:",
		MaxRetries: 1,
		LogLevel:   "silent",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db.GormDB
}

func TestUpDownVersion(t *testing.T) {
	db := openMemory(t)
	driver := migration.DriverFor(database.DriverSQLite)

	if v, _, err := migration.Version(db, testMigrations, "sql", driver); err != nil || v != 0 {
		t.Fatalf("fresh database: version %d, err %v", v, err)
	}

	if err := migration.Up(db, testMigrations, "sql", driver); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := migration.Up(db, testMigrations, "sql", driver); err != nil {
		t.Fatalf("second Up should be a no-op: %v", err)
	}
	v, dirty, err := migration.Version(db, testMigrations, "sql", driver)
	if err != nil || v != 2 || dirty {
		t.Fatalf("after Up: version %d dirty %v err %v", v, dirty, err)
	}
	if !db.Migrator().HasColumn("notes", "author") {
		t.Error("expected author column")
	}

	if err := migration.Steps(db, testMigrations, "sql", -1, driver); err != nil {
		t.Fatalf("migration.Steps(-1): %v", err)
	}
	if v, _, _ := migration.Version(db, testMigrations, "sql", driver); v != 1 {
		t.Errorf("after one step back: version %d", v)
	}

	if err := migration.Down(db, testMigrations, "sql", driver); err != nil {
		t.Fatalf("Down: %v", err)
	}
	if db.Migrator().HasTable("notes") {
		t.Error("expected notes table to be dropped")
	}
}

func TestUnknownDriver(t *testing.T) {
	if migration.DriverFor("mysql") != nil {
		t.Fatal("expected no driver for mysql")
	}
	db := openMemory(t)
	if err := migration.Up(db, testMigrations, "sql", migration.DriverFor("mysql")); err == nil {
		t.Error("expected error without a driver")
	}
}
