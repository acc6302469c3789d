package meshkit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with meshkit-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithMesh adds the mesh name and size to the logger.
func (l *Logger) WithMesh(name string, nodes, elements int) *Logger {
	return &Logger{
		Logger: l.Logger.With("mesh", name, "nodes", nodes, "elements", elements),
	}
}

// WithTolerance adds a tolerance field to the logger.
func (l *Logger) WithTolerance(eps float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("tolerance", eps),
	}
}

// LogOperation logs the outcome of a kernel operation. Failures are logged at
// error level, successes at debug level.
func (l *Logger) LogOperation(ctx context.Context, op string, attrs []slog.Attr, err error) {
	if err != nil {
		l.LogAttrs(ctx, slog.LevelError, op+" failed", append(attrs, slog.Any("error", err))...)
		return
	}

	l.LogAttrs(ctx, slog.LevelDebug, op+" completed", attrs...)
}

// LogRejections logs items an operation skipped or flagged without failing:
// ambiguous merge clusters, rejected merges, field conflicts.
func (l *Logger) LogRejections(ctx context.Context, op string, count int, err error) {
	if count == 0 {
		return
	}

	l.WarnContext(ctx, op+" reported diagnostics",
		"count", count,
		"detail", err,
	)
}

// LogSnapshot logs a repository save or load.
func (l *Logger) LogSnapshot(ctx context.Context, action, ref string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+action+" failed",
			"ref", ref,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+action,
			"ref", ref,
		)
	}
}
