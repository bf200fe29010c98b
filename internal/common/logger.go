package common

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ToSlogLevel converts LogLevel to slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger provides a centralized structured logging interface for the engine.
type Logger struct {
	*slog.Logger
	level LogLevel
}

// NewLogger creates a structured logger with text output at the given level.
func NewLogger(level LogLevel) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stdout, opts)), level: level}
}

// NewJSONLogger creates a structured logger with JSON output.
func NewJSONLogger(level LogLevel) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stdout, opts)), level: level}
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// WithComponent returns a logger with component context.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component), level: l.level}
}

// WithStep returns a logger with step-name context.
func (l *Logger) WithStep(step string) *Logger {
	return &Logger{Logger: l.Logger.With("step", step), level: l.level}
}

// WithWorker returns a logger with worker run-ID context.
func (l *Logger) WithWorker(id string) *Logger {
	return &Logger{Logger: l.Logger.With("worker", id), level: l.level}
}

// WithRequest returns a logger with HTTP request context.
func (l *Logger) WithRequest(method, url string) *Logger {
	return &Logger{Logger: l.Logger.With("method", method, "url", url), level: l.level}
}

// WithStore returns a logger with store-driver context.
func (l *Logger) WithStore(driver string) *Logger {
	return &Logger{Logger: l.Logger.With("store", driver), level: l.level}
}

// Global default logger instance.
var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger sets the global default logger.
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger.
func GetLogger() *Logger {
	return defaultLogger
}
