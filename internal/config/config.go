package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the service configuration, loaded from the environment with
// an optional .env file for development.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"draft-season.db"`

	DataDir string `env:"DATA_DIR" envDefault:"data"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	ModelName    string `env:"MODEL_NAME" envDefault:"gpt-4o-mini"`

	// StrictGoals refuses month advancement until the month's goals are
	// met. Off by default: the season marches on and the ending reflects
	// what the player built.
	StrictGoals bool `env:"STRICT_GOALS" envDefault:"false"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %q or %q)", cfg.StorageBackend, BackendRedis, BackendSQLite)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps the configured level name to a slog level, defaulting to
// info on unknown names.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
