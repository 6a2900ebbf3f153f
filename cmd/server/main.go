package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weather-telemetry/internal/config"
	"weather-telemetry/internal/events"
	"weather-telemetry/internal/handlers"
	"weather-telemetry/internal/provider"
	"weather-telemetry/internal/repository"
	"weather-telemetry/internal/services"
	"weather-telemetry/pkg/database"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
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

	logger := logging.NewStructuredLogger("telemetry-api", version, logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[STARTUP] Starting weather telemetry API server", logging.Fields{
		"version":         version,
		"server_host":     cfg.Server.Host,
		"server_port":     cfg.Server.Port,
		"db_driver":       cfg.Database.Driver,
		"provider_url":    cfg.Provider.BaseURL,
		"kafka_enabled":   len(cfg.Kafka.Brokers) > 0,
		"include_history": cfg.Sync.IncludeHistory,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_telemetry")

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabaseOptions(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, "up"); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to apply schema", logging.Fields{}, err)
	}
	go db.MonitorConnectionPool(ctx, 30*time.Second)

	clock := clockwork.NewRealClock()

	// Initialize repository and upstream client
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)

	client, err := provider.NewClient(provider.Config{
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    cfg.Provider.APIKey,
		Timeout:   cfg.Provider.Timeout,
		UserAgent: "weather-telemetry/" + version,
	}, logger, metricsCollector, clock)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to create provider client", logging.Fields{}, err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer publisher.Close()

	// Initialize services
	catalogService := services.NewCatalogService(client, cfg.Sync.CatalogCacheTTL, clock, logger, metricsCollector)
	weatherService := services.NewWeatherService(weatherRepo, clock, logger, metricsCollector)
	syncService := services.NewSyncService(client, catalogService, weatherRepo, publisher, clock, services.SyncOptions{
		Concurrency:    cfg.Sync.Concurrency,
		BatchTimeout:   cfg.Sync.BatchTimeout,
		IncludeHistory: cfg.Sync.IncludeHistory,
	}, logger, metricsCollector)

	// Initialize handlers
	stationHandler := handlers.NewStationHandler(catalogService, weatherService, syncService, clock, logger, metricsCollector)
	router := handlers.NewRouter(stationHandler)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	<-ctx.Done()

	logger.Info(context.Background(), "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(shutdownCtx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
