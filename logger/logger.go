// Package logger is the structured logger used across the feedback
// service. It wraps zerolog with component tagging, map-style fields and
// request-scoped enrichment (request ID, trace and span IDs).
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger wraps zerolog.Logger with additional context.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// New creates a logger writing to the configured output.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w. Tests use it to capture output.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(consoleWriter(cfg, serviceName, w))
	default:
		zl = zerolog.New(w)
	}
	zl = zl.Level(level)

	zc := zl.With()
	if serviceName != "" {
		zc = zc.Str(FieldService, serviceName)
	}
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}

	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

// NewFromEnv creates a logger configured from LOG_* environment variables.
func NewFromEnv(serviceName string) *Logger {
	cfg := &Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		NoColor:   os.Getenv("LOG_NO_COLOR") == "true",
		Timestamp: true,
	}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithContext returns a logger enriched with the request ID and the active
// trace/span IDs carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.logger.With()
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:  l.logger.With().Err(err).Logger(),
		service: l.service,
	}
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, fields ...map[string]any) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]any) {
	emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]any) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]any) {
	emit(l.logger.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	emit(l.logger.Fatal(), msg, fields)
}

// --- Global logger ---

var globalLogger *Logger

// Init replaces the global logger with one built from cfg.
func Init(cfg Config, serviceName string) {
	cfg.ApplyDefaults()
	globalLogger = New(&cfg, serviceName)
}

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("")
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any) { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any) { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// --- internal helpers ---

func emit(event *zerolog.Event, msg string, fields []map[string]any) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

func outputWriter(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

var levelTags = map[string]string{
	"trace": "TRC", "debug": "DBG", "info": "INF",
	"warn": "WRN", "error": "ERR", "fatal": "FTL",
}

var levelColors = map[string]string{
	"debug": "\033[36m", "info": "\033[32m", "warn": "\033[33m",
	"error": "\033[31m", "fatal": "\033[35m",
}

func consoleWriter(cfg *Config, serviceName string, w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           w,
		TimeFormat:    "15:04:05",
		NoColor:       cfg.NoColor,
		FieldsExclude: []string{FieldService},
		FormatLevel: func(i any) string {
			name := fmt.Sprintf("%s", i)
			tag, ok := levelTags[name]
			if !ok {
				tag = strings.ToUpper(name)
			}
			lvl := "[" + tag + "]"
			if color, ok := levelColors[name]; ok && !cfg.NoColor {
				lvl = color + lvl + "\033[0m"
			}
			if len(serviceName) >= 3 {
				svc := "[" + strings.ToUpper(serviceName[:3]) + "]"
				if !cfg.NoColor {
					svc = "\033[34m" + svc + "\033[0m"
				}
				return svc + lvl
			}
			return lvl
		},
		FormatFieldName: func(i any) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
