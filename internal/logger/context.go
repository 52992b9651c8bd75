// Package logger carries a per-connection [slog.Logger] through a
// [context.Context], so a goroutine handling one TCP connection logs with
// that connection's fields (ID, remote address) without threading a logger
// parameter through every function along the way.
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

type ctxKey struct{}

var ctxLoggerKey = ctxKey{}

// InContext returns a copy of ctx carrying l, retrievable with [FromContext].
func InContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, l)
}

// FromContext returns the logger stored in ctx by [InContext], or
// [slog.Default] if ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if ctxLogger, ok := ctx.Value(ctxLoggerKey).(*slog.Logger); ok {
		l = ctxLogger
	}
	return l
}

// WithConnID returns a copy of ctx whose logger (see [FromContext]) has a
// "conn_id" attribute attached, for handlers that only have a context and a
// connection ID and not the underlying [slog.Logger] value itself.
func WithConnID(ctx context.Context, connID string) context.Context {
	return InContext(ctx, FromContext(ctx).With(slog.String("conn_id", connID)))
}

// FatalErrorContext logs msg and err at error level through ctx's logger
// (see [FromContext]) and then exits the process with status 1. Use it for
// startup failures that leave the process with nothing useful to do, such
// as a listener that failed to bind its port.
func FatalErrorContext(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) // Discard this frame (Callers, FatalErrorContext).

	r := slog.NewRecord(time.Now(), slog.LevelError, msg, pcs[0])
	if err != nil {
		r.AddAttrs(slog.Any("error", err))
	}
	r.AddAttrs(attrs...)

	_ = FromContext(ctx).Handler().Handle(ctx, r)
	os.Exit(1)
}
