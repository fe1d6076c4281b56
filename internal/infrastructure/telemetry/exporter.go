package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultExportInterval is used when ExporterConfig.ExportInterval is zero
const DefaultExportInterval = 60 * time.Second

// ExporterConfig configures the OTLP gRPC push exporter
type ExporterConfig struct {
	CollectorEndpoint string
	ExportInterval    time.Duration
	Insecure          bool
}

// NewOTLPReader creates a periodic reader pushing to an OTLP collector over
// gRPC. The connection is established lazily on first export.
func NewOTLPReader(ctx context.Context, cfg ExporterConfig) (sdkmetric.Reader, error) {
	if cfg.CollectorEndpoint == "" {
		return nil, fmt.Errorf("collector endpoint is required")
	}
	interval := cfg.ExportInterval
	if interval == 0 {
		interval = DefaultExportInterval
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}
