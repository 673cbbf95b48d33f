// Package logger wraps log/slog for the storefront: text in development,
// JSON in production, and an optional Mongo mirror for the admin panel's
// log view.
//
// Handlers log through WithCtx so every line carries the request_id:
//
//	logger.WithCtx(r.Context()).Info("payment processed", "amount", 99.99)
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/lumenera/backend/config"
)

// L is the process-wide logger. Also installed as the slog default.
var L *slog.Logger

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var handler slog.Handler
	switch config.AppEnv() {
	case "production", "prod":
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

type ctxKey struct{}

// InjectLogger stores a request-scoped logger in ctx. The request-logging
// middleware calls this once per request with request_id attached.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// WithCtx returns the request-scoped logger stored by InjectLogger, or the
// base logger when ctx carries none (jobs, scheduler, tests).
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// AttachMongo mirrors every record into a MongoDB collection alongside the
// current handler. The returned func flushes and disconnects; call it on
// shutdown.
func AttachMongo(uri, db, collection string) (func(), error) {
	mh, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return nil, err
	}
	L = slog.New(NewMultiHandler(L.Handler(), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
