package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// DB query latency buckets, in seconds.
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

var (
	attrDBOperation = attribute.Key("db.operation")
	attrDBTable     = attribute.Key("db.table")
	attrDBError     = attribute.Key("db.error")
)

// DBMetricsPluginName is the name the plugin registers under in gorm.DB.Plugins
const DBMetricsPluginName = "db_metrics"

type dbMetricsContextKey struct{}

// DBMetricsPlugin is a GORM plugin that counts and times every statement
// and exposes the connection pool state as observable gauges.
type DBMetricsPlugin struct {
	meter         metric.Meter
	queryTotal    *Counter
	queryDuration *Histogram
}

// NewDBMetricsPlugin creates the plugin's instruments on meter.
func NewDBMetricsPlugin(meter metric.Meter) (*DBMetricsPlugin, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	queryTotal, err := NewCounter(meter, "db_query_total", "Database statements by operation and table", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &DBMetricsPlugin{meter: meter, queryTotal: queryTotal, queryDuration: queryDuration}, nil
}

// Name implements gorm.Plugin.
func (p *DBMetricsPlugin) Name() string {
	return DBMetricsPluginName
}

// Initialize implements gorm.Plugin.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, dbMetricsContextKey{}, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) { p.record(tx, operation) }
	}

	cb := db.Callback()
	registrations := []struct {
		name   string
		before func() error
		after  func() error
	}{
		{"create",
			func() error { return cb.Create().Before("gorm:create").Register("db_metrics:before_create", before) },
			func() error { return cb.Create().After("gorm:create").Register("db_metrics:after_create", after("INSERT")) }},
		{"query",
			func() error { return cb.Query().Before("gorm:query").Register("db_metrics:before_query", before) },
			func() error { return cb.Query().After("gorm:query").Register("db_metrics:after_query", after("SELECT")) }},
		{"update",
			func() error { return cb.Update().Before("gorm:update").Register("db_metrics:before_update", before) },
			func() error { return cb.Update().After("gorm:update").Register("db_metrics:after_update", after("UPDATE")) }},
		{"delete",
			func() error { return cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", before) },
			func() error { return cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", after("DELETE")) }},
	}
	for _, r := range registrations {
		if err := r.before(); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", r.name, err)
		}
		if err := r.after(); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", r.name, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return RegisterPoolMetrics(p.meter, sqlDB)
}

func (p *DBMetricsPlugin) record(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := []attribute.KeyValue{
		attrDBOperation.String(operation),
		attrDBTable.String(tx.Statement.Table),
		attrDBError.Bool(tx.Error != nil),
	}
	p.queryTotal.Inc(ctx, attrs...)
	if start, ok := ctx.Value(dbMetricsContextKey{}).(time.Time); ok {
		p.queryDuration.Record(ctx, time.Since(start).Seconds(), attrs...)
	}
}

// RegisterPoolMetrics exposes sqlDB's pool statistics, read at collection time.
func RegisterPoolMetrics(meter metric.Meter, sqlDB *sql.DB) error {
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge db_pool_connections: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge db_pool_connections_max: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		return nil
	}, connections, maxOpen)
	return err
}
