package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/YURESSA/foodgram-st/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger. InitLogger replaces it once
// configuration is loaded.
var Logger *slog.Logger

type contextKey string

// Request-scoped values copied from Fiber locals into the user context and
// from there onto every log record.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

var localsToContext = []struct {
	local string
	key   contextKey
}{
	{"requestid", RequestIDKey},
	{"userID", UserIDKey},
	{"traceID", TraceIDKey},
}

type ctxHandler struct {
	slog.Handler
}

func (h ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, m := range localsToContext {
		switch v := ctx.Value(m.key).(type) {
		case string:
			r.AddAttrs(slog.String(string(m.key), v))
		case uint:
			r.AddAttrs(slog.Uint64(string(m.key), uint64(v)))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h ctxHandler) WithGroup(name string) slog.Handler {
	return ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	format := "text"
	if os.Getenv("APP_ENV") == "production" {
		format = "json"
	}
	InitLogger("info", format)
}

// InitLogger installs the global logger for level and format ("json" or "text").
func InitLogger(level, format string) {
	Logger = slog.New(ctxHandler{observability.NewLogHandler(os.Stdout, level, format)})
	slog.SetDefault(Logger)
}

// ContextMiddleware copies request_id, user_id and trace_id from locals into
// the request context. It is mounted globally and again after authentication.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for _, m := range localsToContext {
			if v := c.Locals(m.local); v != nil {
				ctx = context.WithValue(ctx, m.key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request. Server errors log at error
// level, client errors at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}

		level, msg := slog.LevelInfo, "request processed"
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level, msg = slog.LevelError, "request failed"
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		Logger.LogAttrs(c.UserContext(), level, msg, attrs...)
		return err
	}
}
