package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CollectionToggles counts favorite and shopping cart changes by outcome.
	CollectionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_collection_toggles_total",
		Help: "Favorite and shopping cart add/remove attempts by outcome",
	}, []string{"collection", "action", "outcome"})

	// SubscriptionChanges counts follow and unfollow attempts by outcome.
	SubscriptionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_subscription_changes_total",
		Help: "Follow and unfollow attempts by outcome",
	}, []string{"action", "outcome"})

	// RecipesPublished counts recipes created through the API.
	RecipesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_recipes_published_total",
		Help: "Total number of recipes published",
	})

	// ShoppingListDownloads counts rendered shopping lists by format.
	ShoppingListDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Total number of shopping list downloads by format",
	}, []string{"format"})

	// ImagesStored counts images written to storage by kind and backend.
	ImagesStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_images_stored_total",
		Help: "Images written to storage by kind and backend",
	}, []string{"kind", "backend"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodgram_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts realtime events delivered by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_websocket_events_total",
		Help: "Total realtime events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// Outcome labels shared by the toggle counters.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeMissing  = "missing"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

const queryStartKey = "observability:query_start"

// RegisterQueryMetrics installs GORM callbacks that record DatabaseQueryLatency
// for create, query, update, delete and raw statements.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	steps := []struct {
		name string
		err  error
	}{
		{"create:before", cb.Create().Before("gorm:create").Register("metrics:before_create", startQueryTimer)},
		{"create:after", cb.Create().After("gorm:create").Register("metrics:after_create", queryObserver("create"))},
		{"query:before", cb.Query().Before("gorm:query").Register("metrics:before_query", startQueryTimer)},
		{"query:after", cb.Query().After("gorm:query").Register("metrics:after_query", queryObserver("query"))},
		{"update:before", cb.Update().Before("gorm:update").Register("metrics:before_update", startQueryTimer)},
		{"update:after", cb.Update().After("gorm:update").Register("metrics:after_update", queryObserver("update"))},
		{"delete:before", cb.Delete().Before("gorm:delete").Register("metrics:before_delete", startQueryTimer)},
		{"delete:after", cb.Delete().After("gorm:delete").Register("metrics:after_delete", queryObserver("delete"))},
		{"raw:before", cb.Raw().Before("gorm:raw").Register("metrics:before_raw", startQueryTimer)},
		{"raw:after", cb.Raw().After("gorm:raw").Register("metrics:after_raw", queryObserver("raw"))},
	}
	for _, step := range steps {
		if step.err != nil {
			return fmt.Errorf("register %s metrics callback: %w", step.name, step.err)
		}
	}
	return nil
}

func startQueryTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func queryObserver(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		observeQuery(tx, op)
	}
}

func observeQuery(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}
