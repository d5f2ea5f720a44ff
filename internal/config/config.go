package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Scheduler   SchedulerConfig
	Display     DisplayConfig
	Logging     LoggingConfig
	Environment string
}

// ServerConfig covers the ops listener (metrics, health).
type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL string
}

type SchedulerConfig struct {
	// Interval between notification scan passes.
	Interval time.Duration
	// GraceWindow is the maximum lateness for which a due event is still
	// announced; older events are skipped permanently.
	GraceWindow time.Duration
}

// DisplayConfig controls how stored UTC instants are rendered in messages
// and how schedule input is interpreted.
type DisplayConfig struct {
	Timezone string
}

func (d DisplayConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", d.Timezone, err)
	}
	return loc, nil
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			Interval:    getEnvDuration("SCHEDULER_INTERVAL", 30*time.Second),
			GraceWindow: getEnvDuration("SCHEDULER_GRACE_WINDOW", 60*time.Second),
		},
		Display: DisplayConfig{
			Timezone: getEnv("DISPLAY_TIMEZONE", "Asia/Tokyo"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := cfg.Display.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
