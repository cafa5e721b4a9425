// Package cache holds the shared Redis client and the cache-aside helpers
// used by the repositories. Every helper is a no-op when Redis is disabled.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds redis_errors_total. redis.Nil is a cache miss, not an error.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			observability.RedisErrorRate.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(op).Inc()
	}
}

// NewClient accepts a redis:// URL or a bare host:port.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	}
	c := redis.NewClient(opts)
	c.AddHook(errorCounter{})
	return c, nil
}

// InitRedis connects the shared client. When Redis is unreachable the API
// runs without caching, token revocation or cross-instance events.
func InitRedis(addr string) {
	client = nil

	c, err := NewClient(addr)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = c.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = c.Close()
		}
	}
	if err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
		return
	}

	middleware.Logger.Info("Redis connected", slog.String("addr", c.Options().Addr))
	client = c
}

// SetClient swaps the shared client; nil disables caching.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared client, or nil when Redis is disabled.
func GetClient() *redis.Client {
	return client
}
