package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"weather-telemetry/internal/config"
	"weather-telemetry/pkg/database"
	"weather-telemetry/pkg/logging"
	"weather-telemetry/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := logging.NewStructuredLogger("telemetry-migrate", "1.0.0", logging.WarnLevel)
	if *verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	metricsCollector := metrics.NewCollector("weather_migrate")

	db, err := database.Open(ctx, cfg.DatabaseOptions(), logger, metricsCollector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database successfully\n", db.Driver())
	fmt.Printf("Running migration: %s\n", *direction)

	if err := db.Migrate(ctx, *direction); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}
