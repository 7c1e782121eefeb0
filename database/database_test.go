package database

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/logger"
)

type widget struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func memoryConfig() Config {
	return Config{Driver: DriverSQLite, DSN: ":memory:", AutoMigrate: true, MaxRetries: 1, LogLevel: "silent"}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Driver != DriverSQLite || cfg.DSN != "feedback.db" {
		t.Errorf("unexpected driver defaults %q %q", cfg.Driver, cfg.DSN)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 || cfg.MaxRetries != 5 {
		t.Errorf("unexpected pool defaults %+v", cfg)
	}
	if cfg.ConnMaxLifetime != time.Hour || cfg.SlowQueryThreshold != 200*time.Millisecond {
		t.Errorf("unexpected duration defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	pg := Config{Driver: DriverPostgres}
	pg.ApplyDefaults()
	if pg.DSN != "" {
		t.Errorf("postgres must not get a default DSN, got %q", pg.DSN)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		c := Config{}
		c.ApplyDefaults()
		return c
	}
	tests := map[string]func(*Config){
		"unknown driver":   func(c *Config) { c.Driver = "mysql" },
		"missing dsn":      func(c *Config) { c.DSN = "" },
		"idle above open":  func(c *Config) { c.MaxIdleConns = c.MaxOpenConns + 1 },
		"bad log level":    func(c *Config) { c.LogLevel = "verbose" },
		"zero max retries": func(c *Config) { c.MaxRetries = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		d, err := Dialector(Config{Driver: driver, DSN: "x"})
		if err != nil || d.Name() != driver {
			t.Errorf("Dialector(%q) = %v, %v", driver, d, err)
		}
	}
	if _, err := Dialector(Config{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := db.WithContext(ctx).Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = db.WithContext(ctx).Create(&widget{Name: "a"}).Error
	if !IsDuplicateError(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if appErr := FromDatabase(err, "widget"); appErr.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409, got %d", appErr.HTTPStatus)
	}

	var w widget
	err = db.WithContext(ctx).First(&w, "name = ?", "missing").Error
	if !IsNotFoundError(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWithTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	_ = db.AutoMigrate(&widget{})

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "tx"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Open(ctx, memoryConfig(), nil); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestClose_Idempotent(t *testing.T) {
	db, err := Open(context.Background(), memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(memoryConfig(), logger.Nop()).WithAutoMigrate(&widget{})

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if !c.DB().GormDB.Migrator().HasTable(&widget{}) {
		t.Error("expected auto-migrated table")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestComponent_MigrationsRunOnStart(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"sql/1_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
		"sql/1_gadgets.down.sql": {Data: []byte("DROP TABLE gadgets;")},
	}
	c := NewComponent(memoryConfig(), logger.Nop()).WithMigrations(fsys, "sql")
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop(ctx)

	if !c.DB().GormDB.Migrator().HasTable("gadgets") {
		t.Error("expected migrated table")
	}
	if d := c.Describe(); !strings.Contains(d.Details, "migrations=sql") {
		t.Errorf("expected migrations in details, got %q", d.Details)
	}

	bad := NewComponent(memoryConfig(), logger.Nop()).WithMigrations(fstest.MapFS{
		"sql/1_broken.up.sql": {Data: []byte("CREATE TABLE")},
	}, "sql")
	if err := bad.Start(ctx); err == nil {
		t.Error("expected Start to fail on a broken migration")
	}
}

func TestComponent_DescribeMasksPassword(t *testing.T) {
	c := NewComponent(Config{Driver: DriverPostgres, DSN: "postgres://app:s3cret@db:5432/feedback"}, nil)
	d := c.Describe()
	if strings.Contains(d.Details, "s3cret") {
		t.Errorf("password leaked in %q", d.Details)
	}
	if !strings.HasPrefix(d.Details, "postgres ") {
		t.Errorf("unexpected details %q", d.Details)
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{errors.New("database is locked"), http.StatusServiceUnavailable},
		{errors.New("syntax error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := FromDatabase(tt.err, "account"); got.HTTPStatus != tt.want {
			t.Errorf("FromDatabase(%v) = %d, want %d", tt.err, got.HTTPStatus, tt.want)
		}
	}
	if FromDatabase(nil, "account") != nil {
		t.Error("nil error should map to nil")
	}
}
