package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingEnv is wrapped by Load for every absent required variable.
var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Storage. Config blobs go to Postgres when PostgresURL is set, otherwise
	// to Redis. ClickHouseURL enables the snapshot archive.
	RedisURL      string
	PostgresURL   string
	ClickHouseURL string

	// Auth
	ServerToken string
	AdminToken  string

	// Engine cadence
	TickInterval     time.Duration
	SnapshotInterval time.Duration
	IngestQueueSize  int

	// Write-behind pools
	FlushQueueSize int
	FlushBatchSize int
	FlushInterval  time.Duration
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		PostgresURL:   getEnv("POSTGRES_URL", ""),
		ClickHouseURL: getEnv("CLICKHOUSE_URL", ""),

		TickInterval:     getEnvDuration("TICK_INTERVAL", 1*time.Second),
		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 120*time.Second),
		IngestQueueSize:  getEnvInt("INGEST_QUEUE_SIZE", 10000),

		FlushQueueSize: getEnvInt("FLUSH_QUEUE_SIZE", 10000),
		FlushBatchSize: getEnvInt("FLUSH_BATCH_SIZE", 500),
		FlushInterval:  getEnvDuration("FLUSH_INTERVAL", 1*time.Second),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	if cfg.ServerToken, err = getEnvRequired("SERVER_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.AdminToken, err = getEnvRequired("ADMIN_TOKEN"); err != nil {
		return nil, err
	}

	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if cfg.SnapshotInterval < cfg.TickInterval {
		cfg.SnapshotInterval = cfg.TickInterval
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingEnv, key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
