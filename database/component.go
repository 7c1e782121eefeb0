package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/database/migration"
	"github.com/kbukum/feedback/logger"
	"github.com/kbukum/feedback/util"
)

// ComponentName is the registry name of the database.
const ComponentName = "database"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component manages the DB lifecycle inside a component.Registry.
type Component struct {
	db     *DB
	cfg    Config
	log    *logger.Logger
	models []any

	migrations   fs.FS
	migrationDir string
}

// NewComponent creates a database component. The connection is opened on
// Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// WithAutoMigrate registers models migrated on Start when AutoMigrate is set.
func (c *Component) WithAutoMigrate(models ...any) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithMigrations registers versioned SQL migrations applied on Start,
// before auto-migration. dir is resolved inside fsys and must hold the
// files for the configured driver.
func (c *Component) WithMigrations(fsys fs.FS, dir string) *Component {
	c.migrations = fsys
	c.migrationDir = dir
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

func (c *Component) Name() string { return ComponentName }

// Start connects and optionally runs auto-migration.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	if c.migrations != nil {
		if err := migration.Up(db.GormDB, c.migrations, c.migrationDir, migration.DriverFor(c.cfg.Driver)); err != nil {
			_ = db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
	}

	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	c.db = db
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: ComponentName, Status: component.StatusUnhealthy, Message: "not connected"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: ComponentName, Status: component.StatusUnhealthy, Message: "ping failed"}
	}
	return component.Health{Name: ComponentName, Status: component.StatusHealthy}
}

// Describe implements component.Describable. The DSN password is masked.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s %s pool=%d/%d", c.cfg.Driver, util.MaskDSN(c.cfg.DSN), c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.migrations != nil {
		details += " migrations=" + c.migrationDir
	}
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: details,
	}
}
