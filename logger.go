package kmviz

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kmviz-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithInitMethod adds an init_method field to the logger.
func (l *Logger) WithInitMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("init_method", method),
	}
}

// WithSeed adds a seed field to the logger.
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogRun logs a clustering run. Runs stopped by the iteration cap are
// logged as warnings.
func (l *Logger) LogRun(ctx context.Context, method string, k, points, steps int, converged bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "run failed",
			"init_method", method,
			"k", k,
			"points", points,
			"error", err,
		)
	case !converged:
		l.WarnContext(ctx, "run did not converge",
			"init_method", method,
			"k", k,
			"points", points,
			"steps", steps,
		)
	default:
		l.DebugContext(ctx, "run completed",
			"init_method", method,
			"k", k,
			"points", points,
			"steps", steps,
		)
	}
}

// LogBatch logs a batch of runs.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"count", count,
		)
	}
}

// LogGenerate logs a dataset generation.
func (l *Logger) LogGenerate(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "generate failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "generate completed",
			"count", count,
		)
	}
}

// LogCache logs a run cache lookup.
func (l *Logger) LogCache(ctx context.Context, hit bool) {
	l.DebugContext(ctx, "run cache lookup", "hit", hit)
}
