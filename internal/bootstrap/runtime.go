// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YURESSA/foodgram-st/internal/cache"
	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/database"
	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceName identifies the API in traces and logs.
const ServiceName = "foodgram-api"

// Options control runtime initialization behavior.
type Options struct {
	// IngredientsFile, when set, is imported into the catalog after connecting.
	IngredientsFile string
}

// Runtime holds the connections opened by InitRuntime.
type Runtime struct {
	DB              *gorm.DB
	Redis           *redis.Client
	shutdownTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, connects to the database and
// Redis, and imports the ingredient fixture file when one is given.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.InitLogger(cfg.LogLevel, cfg.LogFormat)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client disables caching; the API keeps working without Redis.
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdownTracing}

	if opts.IngredientsFile != "" {
		if err := ImportIngredientsFile(context.Background(), db, opts.IngredientsFile); err != nil {
			_ = rt.Close(context.Background())
			return nil, err
		}
	}

	return rt, nil
}

// ImportIngredientsFile loads a JSON or YAML fixture into the catalog.
func ImportIngredientsFile(ctx context.Context, db *gorm.DB, path string) error {
	records, err := seed.LoadIngredientsFile(path)
	if err != nil {
		return fmt.Errorf("read ingredients %s: %w", path, err)
	}
	created, err := seed.ImportIngredients(ctx, db, records)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "ingredients imported",
		slog.String("file", path), slog.Int("records", len(records)), slog.Int("created", created))
	return nil
}

// Close releases the connections held by the runtime.
func (r *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if sqlDB, err := r.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ShutdownTracing flushes pending spans without closing connections.
func (r *Runtime) ShutdownTracing(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}
