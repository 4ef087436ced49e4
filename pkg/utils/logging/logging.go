package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format specifies the log output format
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var (
	defaultLogger *slog.Logger
	defaultMutex  sync.RWMutex
)

func init() {
	defaultLogger = New(os.Stdout, slog.LevelInfo, FormatConsole)
}

// New creates a new logger with the given writer, level and format.
// Fields tagged `masq:"secret"` are redacted before output.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	filter := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithSource(true),
			clog.WithReplaceAttr(filter),
		)
	}

	return slog.New(handler)
}

// Default returns the process-wide logger
func Default() *slog.Logger {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *slog.Logger) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()
	defaultLogger = logger
}

type ctxLoggerKey struct{}

// With returns a new context carrying the given logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger from the context, falling back to the default
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
