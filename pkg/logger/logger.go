// Package logger provides the structured, levelled logger used across the
// AllinBuy backend, built on log/slog.
//
// Handlers log through a request-scoped logger so every line carries the
// request_id injected by the reqid middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_number", order.Number)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_number=PED-...
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/allinbuy/api/config"
)

var L *slog.Logger

func init() {
	Setup()
}

// Setup (re)builds the default logger from config. Called once from init;
// internal/server calls it again after config.Load so the LOG_MONGO_URI sink
// can attach.
func Setup() {
	var base slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		base = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		base = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	if uri := config.LogMongoURI(); uri != "" {
		if mh, err := NewMongoHandler(uri, config.LogMongoDB(), "logs"); err == nil {
			base = NewMultiHandler(base, mh)
		} else {
			slog.Warn("logger: mongo sink disabled", "error", err)
		}
	}

	L = slog.New(base)
	slog.SetDefault(L)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped *slog.Logger stored in ctx by the
// logging middleware, or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// Inject stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level using the base logger.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level using the base logger.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level using the base logger.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level using the base logger.
func Error(msg string, args ...any) { L.Error(msg, args...) }
