package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/posledger/internal/application/catalog"
	"github.com/erp/posledger/internal/application/common"
	eventapp "github.com/erp/posledger/internal/application/event"
	tradeapp "github.com/erp/posledger/internal/application/trade"
	"github.com/erp/posledger/internal/infrastructure/config"
	"github.com/erp/posledger/internal/infrastructure/event"
	"github.com/erp/posledger/internal/infrastructure/logger"
	"github.com/erp/posledger/internal/infrastructure/persistence"
	"github.com/erp/posledger/internal/infrastructure/scheduler"
	"github.com/erp/posledger/internal/infrastructure/telemetry"
	"github.com/joho/godotenv"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// The server hosts the ledger core: it owns the database, routes committed
// events to the alert and metrics handlers, and sweeps overdue installments.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var readers []sdkmetric.Reader
	if cfg.Telemetry.Enabled {
		reader, err := telemetry.NewOTLPReader(ctx, telemetry.ExporterConfig{
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ExportInterval:    cfg.Telemetry.ExportInterval,
			Insecure:          cfg.Telemetry.Insecure,
		})
		if err != nil {
			log.Fatal("Failed to create metrics exporter", zap.Error(err))
		}
		readers = append(readers, reader)
	}
	meterProvider, err := telemetry.NewMeterProvider(telemetry.MetricsConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log, readers...)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter(cfg.App.Name)

	dbOpts := []persistence.Option{persistence.WithLogger(log, cfg.Log.Level)}
	if meterProvider.IsEnabled() {
		dbOpts = append(dbOpts, persistence.WithMeter(meter))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(catalogapp.NewLowStockAlertHandler(log).
		WithNotifier(catalogapp.NewLoggingStockAlertNotifier(log)))
	bus.Subscribe(eventapp.NewMetricsHandler(businessMetrics, log))

	sales := tradeapp.NewSaleService(
		db.TransactionScope(),
		common.NewKeyedLocker(),
		bus,
		tradeapp.SaleSettings{
			MaxInstallments:         cfg.Sales.MaxInstallments,
			InstallmentIntervalDays: cfg.Sales.InstallmentIntervalDays,
		},
		log,
	)

	trigger, err := scheduler.NewOverdueTrigger(scheduler.OverdueTriggerConfig{
		Interval:   cfg.Sales.OverdueSweepInterval,
		RunOnStart: true,
	}, sales, log)
	if err != nil {
		log.Fatal("Failed to create overdue trigger", zap.Error(err))
	}
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start overdue trigger", zap.Error(err))
	}

	<-ctx.Done()
	log.Info("Shutting down POS ledger...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := trigger.Stop(shutdownCtx); err != nil {
		log.Error("Overdue trigger did not stop in time", zap.Error(err))
	}
	log.Info("POS ledger exited")
}
