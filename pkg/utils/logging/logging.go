package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

type ctxLoggerKey struct{}

var (
	defaultLogger = slog.New(slog.DiscardHandler)
	defaultMu     sync.RWMutex
)

// Format selects the output encoding of the default handler.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Redactor returns the ReplaceAttr function shared by every handler. Fields
// tagged `masq:"secret"` and well-known credential field names are masked.
func Redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("Token"),
		masq.WithFieldName("Secret"),
	)
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, format Format, source bool) *slog.Logger {
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   source,
			Level:       level,
			ReplaceAttr: Redactor(),
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithSource(source),
			clog.WithReplaceAttr(Redactor()),
		)
	}
	return slog.New(handler)
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *slog.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// With embeds logger into ctx.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger stored in ctx, falling back to Default.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
