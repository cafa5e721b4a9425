package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YURESSA/foodgram-st/internal/middleware"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Load returns the value cached under key, or calls fetch and caches its
// result for ttl. Redis failures are logged and degrade to fetch; fetch
// errors are returned and never cached. An entry that no longer decodes into
// T is evicted and refetched.
func Load[T any](ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := lookup(ctx, key, &cached)
	switch {
	case err == nil && hit:
		return cached, nil
	case errors.Is(err, errUndecodable):
		middleware.Logger.WarnContext(ctx, "evicting undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))
		if delErr := client.Del(ctx, key).Err(); delErr != nil {
			middleware.Logger.WarnContext(ctx, "cache evict failed", slog.String("key", key), slog.String("error", delErr.Error()))
		}
	case err != nil:
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if err := store(ctx, key, v, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return v, nil
}

var errUndecodable = errors.New("cache: undecodable entry")

// lookup reports a hit only when the entry decodes into dest.
func lookup(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: %v", errUndecodable, err)
	}
	return true, nil
}

func store(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}
