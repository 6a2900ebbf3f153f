// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"weather-telemetry/pkg/database"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Sync     SyncConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ProviderConfig configures the upstream weather network API.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type SyncConfig struct {
	Concurrency     int
	BatchTimeout    time.Duration
	IncludeHistory  bool
	CatalogCacheTTL time.Duration
}

// KafkaConfig is optional; an empty broker list disables event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type LoggingConfig struct {
	Level string
}

// ConfigurationError reports a missing or malformed setting.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
}

// LoadConfig reads configuration from environment variables, applying
// defaults for anything unset.
func LoadConfig() (*Config, error) {
	l := &loader{}

	cfg := &Config{
		Server: ServerConfig{
			Host:         l.str("SERVER_HOST", "0.0.0.0"),
			Port:         l.integer("SERVER_PORT", 8080),
			ReadTimeout:  l.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: l.duration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  l.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          l.str("DB_DRIVER", "postgres"),
			Host:            l.str("DB_HOST", "localhost"),
			Port:            l.integer("DB_PORT", 5432),
			User:            l.str("DB_USER", "telemetry"),
			Password:        l.str("DB_PASSWORD", ""),
			Database:        l.str("DB_NAME", "telemetry"),
			SSLMode:         l.str("DB_SSLMODE", "disable"),
			SQLitePath:      l.str("DB_SQLITE_PATH", "data/telemetry.db"),
			MaxOpenConns:    l.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    l.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: l.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: l.duration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Provider: ProviderConfig{
			BaseURL: strings.TrimRight(l.str("PROVIDER_BASE_URL", "https://pro.weatherxm.com/api/v1"), "/"),
			APIKey:  l.str("PROVIDER_API_KEY", ""),
			Timeout: l.duration("PROVIDER_TIMEOUT", 10*time.Second),
		},
		Sync: SyncConfig{
			Concurrency:     l.integer("SYNC_CONCURRENCY", 8),
			BatchTimeout:    l.duration("SYNC_BATCH_TIMEOUT", 10*time.Minute),
			IncludeHistory:  l.boolean("SYNC_INCLUDE_HISTORY", false),
			CatalogCacheTTL: l.duration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: l.list("KAFKA_BROKERS"),
			Topic:   l.str("KAFKA_TOPIC", "weather.station.synced"),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(l.str("LOG_LEVEL", "info")),
		},
	}

	if l.err != nil {
		return nil, l.err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and required values.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return &ConfigurationError{Key: "PROVIDER_API_KEY", Message: "is required"}
	}
	if c.Provider.BaseURL == "" {
		return &ConfigurationError{Key: "PROVIDER_BASE_URL", Message: "is required"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigurationError{Key: "SERVER_PORT", Message: fmt.Sprintf("%d out of range", c.Server.Port)}
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Database == "" {
			return &ConfigurationError{Key: "DB_HOST", Message: "host and database name are required for postgres"}
		}
	case "sqlite3":
		if c.Database.SQLitePath == "" {
			return &ConfigurationError{Key: "DB_SQLITE_PATH", Message: "is required for sqlite3"}
		}
	default:
		return &ConfigurationError{Key: "DB_DRIVER", Message: fmt.Sprintf("%q not supported (allowed: postgres, sqlite3)", c.Database.Driver)}
	}
	if c.Sync.Concurrency < 1 {
		return &ConfigurationError{Key: "SYNC_CONCURRENCY", Message: "must be at least 1"}
	}
	if c.Provider.Timeout <= 0 {
		return &ConfigurationError{Key: "PROVIDER_TIMEOUT", Message: "must be positive"}
	}
	if c.Sync.CatalogCacheTTL < 0 {
		return &ConfigurationError{Key: "CATALOG_CACHE_TTL", Message: "must not be negative"}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return &ConfigurationError{Key: "KAFKA_TOPIC", Message: "is required when KAFKA_BROKERS is set"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigurationError{Key: "LOG_LEVEL", Message: fmt.Sprintf("%q not supported (allowed: debug, info, warn, error)", c.Logging.Level)}
	}
	return nil
}

// DatabaseOptions converts the database settings for database.Open.
func (c *Config) DatabaseOptions() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		SQLitePath:      c.Database.SQLitePath,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// loader keeps the first parse error so LoadConfig can read every key in
// one pass.
type loader struct {
	err error
}

func (l *loader) fail(key, raw string, err error) {
	if l.err == nil {
		l.err = &ConfigurationError{Key: key, Message: fmt.Sprintf("invalid value %q: %v", raw, err)}
	}
}

func (l *loader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (l *loader) integer(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.fail(key, raw, err)
		return def
	}
	return v
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		l.fail(key, raw, err)
		return def
	}
	return v
}

func (l *loader) boolean(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.fail(key, raw, err)
		return def
	}
	return v
}

func (l *loader) list(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
