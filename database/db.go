// Package database opens and manages the gorm connection pool backing the
// account store. sqlite and PostgreSQL are supported.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/feedback/logger"
)

// DB wraps a gorm database.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Dialector returns the gorm dialector for cfg.Driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects using cfg.Driver, retrying with linear backoff until
// cfg.MaxRetries attempts have failed or ctx is done.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	d, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenDialector(ctx, d, cfg, log)
}

// OpenDialector connects with an explicit dialector.
func OpenDialector(ctx context.Context, d gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("database")

	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		db, err := connect(ctx, d, gormCfg, cfg)
		if err == nil {
			log.Info("database connection established", map[string]any{
				"driver":  cfg.Driver,
				"attempt": attempt,
			})
			return &DB{GormDB: db, log: log, cfg: cfg}, nil
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("database connection attempt failed, retrying", map[string]any{
				"attempt":         attempt,
				logger.FieldError: err.Error(),
				"backoff":         backoff.String(),
			})
			if err := sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("database connection canceled during retry: %w", err)
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, lastErr)
}

func connect(ctx context.Context, d gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(d, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.inMemory() {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.inMemory() {
		// The database disappears with its last connection.
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}
	return db, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close closes the connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a gorm session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate runs gorm auto-migration for the given models.
func (d *DB) AutoMigrate(models ...any) error {
	for _, model := range models {
		if err := d.GormDB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	d.log.Debug("auto-migration completed", map[string]any{"models": len(models)})
	return nil
}

// WithTransaction runs fn in a transaction. fn's error or a panic rolls
// the transaction back.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.GormDB.WithContext(ctx).Transaction(fn)
}
