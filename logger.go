package storagemock

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with storagemock-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// This is the default for activations; a test double should be quiet
// unless asked not to be.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithBucket adds a bucket field to the logger.
func (l *Logger) WithBucket(bucket string) *Logger {
	return &Logger{
		Logger: l.Logger.With("bucket", bucket),
	}
}

// WithKey adds an object key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogActivation logs a mount-set activation.
func (l *Logger) LogActivation(ctx context.Context, mounts int) {
	l.InfoContext(ctx, "mock storage activated",
		"mounts", mounts,
	)
}

// LogDeactivation logs a mount-set deactivation.
func (l *Logger) LogDeactivation(ctx context.Context) {
	l.InfoContext(ctx, "mock storage deactivated")
}
