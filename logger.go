package diapasom

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with diapasom-specific context helpers for
// tagging log lines with the rank and epoch a training run is on.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithRank adds a rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{Logger: l.Logger.With("rank", rank)}
}

// WithEpoch adds an epoch field to the logger.
func (l *Logger) WithEpoch(epoch int) *Logger {
	return &Logger{Logger: l.Logger.With("epoch", epoch)}
}

// LogEpoch logs the outcome of one completed epoch.
func (l *Logger) LogEpoch(epoch int, diff float64, err error) {
	if err != nil {
		l.Error("epoch failed", "epoch", epoch, "diff", diff, "error", err)
		return
	}
	l.Info("epoch completed", "epoch", epoch, "diff", diff)
}

// LogRun logs the outcome of a completed training run.
func (l *Logger) LogRun(summary Summary, err error) {
	if err != nil {
		l.Error("run failed", "error", err)
		return
	}
	l.Info("run completed",
		"epochs", summary.Epochs,
		"diff", summary.Diff,
		"total", summary.Total,
		"communication", summary.Communication,
	)
}
