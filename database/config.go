package database

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	// Driver selects the dialect: "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`

	// DSN is the driver-specific connection string. For sqlite a file path
	// or ":memory:".
	DSN string `mapstructure:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// AutoMigrate creates or updates the schema of registered models on start.
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// SlowQueryThreshold marks queries slower than this as slow in the log.
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`

	// LogLevel is the gorm log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.DSN == "" && c.Driver == DriverSQLite {
		c.DSN = "feedback.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.SlowQueryThreshold == 0 {
		c.SlowQueryThreshold = 200 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and consistent.
func (c *Config) Validate() error {
	if !slices.Contains([]string{DriverSQLite, DriverPostgres}, c.Driver) {
		return fmt.Errorf("database.driver must be %q or %q (got: %q)", DriverSQLite, DriverPostgres, c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("database.max_retries must be > 0")
	}
	if !slices.Contains([]string{"silent", "error", "warn", "info"}, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("database.log_level must be one of silent, error, warn, info (got: %q)", c.LogLevel)
	}
	return nil
}

// inMemory reports whether the DSN names a private in-memory sqlite
// database, which exists per connection.
func (c *Config) inMemory() bool {
	return c.Driver == DriverSQLite && strings.Contains(c.DSN, ":memory:") && !strings.Contains(c.DSN, "cache=shared")
}
