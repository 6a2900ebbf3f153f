package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"

	"weather-telemetry/internal/config"
	"weather-telemetry/internal/events"
	"weather-telemetry/internal/provider"
	"weather-telemetry/internal/repository"
	"weather-telemetry/internal/services"
	"weather-telemetry/pkg/database"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Parse command-line flags
	date := flag.String("date", "", "History date to sync (YYYY-MM-DD, default today UTC)")
	history := flag.Bool("history", false, "Also sync one day of history per station")
	concurrency := flag.Int("concurrency", 0, "Concurrent station syncs (default SYNC_CONCURRENCY)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Sync.Concurrency = *concurrency
	}
	if *history || *date != "" {
		cfg.Sync.IncludeHistory = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewStructuredLogger("telemetry-syncer", version, logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[SYNCER_START] Starting batch sync", logging.Fields{
		"version":         version,
		"date":            *date,
		"include_history": cfg.Sync.IncludeHistory,
		"concurrency":     cfg.Sync.Concurrency,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_syncer")

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabaseOptions(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[SYNCER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, "up"); err != nil {
		logger.Fatal(ctx, "[SYNCER_ERROR] Failed to apply schema", logging.Fields{}, err)
	}

	clock := clockwork.NewRealClock()
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)

	client, err := provider.NewClient(provider.Config{
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    cfg.Provider.APIKey,
		Timeout:   cfg.Provider.Timeout,
		UserAgent: "weather-telemetry-syncer/" + version,
	}, logger, metricsCollector, clock)
	if err != nil {
		logger.Fatal(ctx, "[SYNCER_ERROR] Failed to create provider client", logging.Fields{}, err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer publisher.Close()

	// The catalog is read once per run.
	catalogService := services.NewCatalogService(client, 0, clock, logger, metricsCollector)
	syncService := services.NewSyncService(client, catalogService, weatherRepo, publisher, clock, services.SyncOptions{
		Concurrency:    cfg.Sync.Concurrency,
		BatchTimeout:   cfg.Sync.BatchTimeout,
		IncludeHistory: cfg.Sync.IncludeHistory,
	}, logger, metricsCollector)

	report, err := syncService.SyncAll(ctx, *date)
	if err != nil {
		logger.Fatal(ctx, "[SYNC_ERROR] Batch sync failed", logging.Fields{
			"date": *date,
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SYNC COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Stations:           %d\n", report.Stations)
	fmt.Printf("Latest Synced:      %d\n", report.LatestSynced)
	if cfg.Sync.IncludeHistory {
		fmt.Printf("History Synced:     %d (%s)\n", report.HistorySynced, report.Date)
	}
	fmt.Printf("Degraded:           %d\n", report.Degraded)
	fmt.Printf("Skipped:            %d\n", report.Skipped)
	fmt.Printf("Failed:             %d\n", len(report.Failures))
	fmt.Printf("Duration:           %v\n", report.Duration)
	if report.Duration > 0 {
		fmt.Printf("Stations/Second:    %.2f\n", float64(report.Stations-report.Skipped)/report.Duration.Seconds())
	}

	if len(report.Failures) > 0 {
		fmt.Printf("\nFailures (%d):\n", len(report.Failures))
		for i, f := range report.Failures {
			if i < 10 {
				fmt.Printf("  - %s [%s]: %s\n", f.StationID, f.Kind, f.Error)
			}
		}
		if len(report.Failures) > 10 {
			fmt.Printf("  ... and %d more failures\n", len(report.Failures)-10)
		}
	}

	logger.Info(ctx, "[SYNCER_COMPLETE] Batch sync completed", logging.Fields{
		"stations":         report.Stations,
		"latest_synced":    report.LatestSynced,
		"history_synced":   report.HistorySynced,
		"failures":         len(report.Failures),
		"duration_seconds": report.Duration.Seconds(),
	})
}
