package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/feedback/logger"
)

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// gormLogger routes gorm output through the service logger. SQL text is
// logged with bound values elided.
type gormLogger struct {
	log           *logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, slowThreshold time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{
		log:           log.WithComponent("gorm"),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: l.log, level: level, slowThreshold: l.slowThreshold}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	log := l.log.WithContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		log.Error("query error", queryFields(sql, rows, elapsed, err))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		log.Warn("slow query", queryFields(sql, rows, elapsed, nil))
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		log.Debug("query", queryFields(sql, rows, elapsed, nil))
	}
}

// ParamsFilter keeps bound values, which may include password digests,
// out of the logged SQL.
func (l *gormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

func queryFields(sql string, rows int64, elapsed time.Duration, err error) map[string]any {
	fields := map[string]any{
		"sql":                sql,
		"rows":               rows,
		logger.FieldDuration: elapsed.Milliseconds(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	return fields
}
