package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/marcos020499/booker/shared/models"
)

const (
	EnvAPIPort            = "API_PORT"
	EnvTemporalHost       = "TEMPORAL_HOST"
	EnvTemporalNamespace  = "TEMPORAL_NAMESPACE"
	EnvTaskQueue          = "TASK_QUEUE"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvSeedCatalog        = "SEED_CATALOG"
	EnvSearchLatency      = "SEARCH_LATENCY"
	EnvSearchTimeout      = "SEARCH_TIMEOUT"
	EnvSessionIdleTimeout = "SESSION_IDLE_TIMEOUT"
	EnvActionWaitTimeout  = "ACTION_WAIT_TIMEOUT"
	EnvMaxPassengers      = "MAX_PASSENGERS"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

const (
	DefaultAPIPort            = "8080"
	DefaultTemporalHost       = "localhost:7233"
	DefaultTemporalNamespace  = "default"
	DefaultTaskQueue          = "flight-booking-queue"
	DefaultSearchTimeout      = 30 * time.Second
	DefaultSessionIdleTimeout = 30 * time.Minute
	DefaultActionWaitTimeout  = 5 * time.Second
	DefaultLogLevel           = logger.INFO
	DefaultLogFormat          = logger.JSON
)

// Config is shared by the API server and the worker
type Config struct {
	APIPort           string
	TemporalHost      string
	TemporalNamespace string
	TaskQueue         string

	// DatabaseURL is optional; without it the embedded catalog is served
	DatabaseURL string
	SeedCatalog bool

	SearchLatency      time.Duration
	SearchTimeout      time.Duration
	SessionIdleTimeout time.Duration
	ActionWaitTimeout  time.Duration
	MaxPassengers      int

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func Load() (*Config, bool, error) {
	loadedDotenv := godotenv.Load() == nil

	cfg := &Config{
		APIPort:           getEnv(EnvAPIPort, DefaultAPIPort),
		TemporalHost:      getEnv(EnvTemporalHost, DefaultTemporalHost),
		TemporalNamespace: getEnv(EnvTemporalNamespace, DefaultTemporalNamespace),
		TaskQueue:         getEnv(EnvTaskQueue, DefaultTaskQueue),

		DatabaseURL: getEnv(EnvDatabaseURL, ""),
		SeedCatalog: getEnvBool(EnvSeedCatalog, true),

		SearchLatency:      getEnvDuration(EnvSearchLatency, flow.DefaultSearchLatency),
		SearchTimeout:      getEnvDuration(EnvSearchTimeout, DefaultSearchTimeout),
		SessionIdleTimeout: getEnvDuration(EnvSessionIdleTimeout, DefaultSessionIdleTimeout),
		ActionWaitTimeout:  getEnvDuration(EnvActionWaitTimeout, DefaultActionWaitTimeout),
		MaxPassengers:      getEnvInt(EnvMaxPassengers, models.DefaultMaxPassengers),

		LogLevel:  getEnv(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnv(EnvLogFormat, DefaultLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, loadedDotenv, err
	}
	return cfg, loadedDotenv, nil
}

// Validate checks every field and reports all problems at once
func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.APIPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("%s must be between 1 and 65535, got: %s", EnvAPIPort, cfg.APIPort))
	}
	if cfg.TemporalHost == "" {
		problems = append(problems, fmt.Sprintf("%s is required", EnvTemporalHost))
	}
	if cfg.TaskQueue == "" {
		problems = append(problems, fmt.Sprintf("%s is required", EnvTaskQueue))
	}
	if cfg.SearchLatency < 0 {
		problems = append(problems, fmt.Sprintf("%s must not be negative, got: %s", EnvSearchLatency, cfg.SearchLatency))
	}
	if cfg.SearchTimeout <= cfg.SearchLatency {
		problems = append(problems, fmt.Sprintf("%s (%s) must exceed %s (%s)", EnvSearchTimeout, cfg.SearchTimeout, EnvSearchLatency, cfg.SearchLatency))
	}
	if cfg.SessionIdleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", EnvSessionIdleTimeout, cfg.SessionIdleTimeout))
	}
	if cfg.ActionWaitTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", EnvActionWaitTimeout, cfg.ActionWaitTimeout))
	}
	if cfg.MaxPassengers < 1 {
		problems = append(problems, fmt.Sprintf("%s must be at least 1, got: %d", EnvMaxPassengers, cfg.MaxPassengers))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case logger.JSON, logger.TEXT:
	default:
		problems = append(problems, fmt.Sprintf("%s must be json or text, got: %s", EnvLogFormat, cfg.LogFormat))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// Logger builds the structured logger for a service
func (cfg *Config) Logger(service string) *logger.Logger {
	return logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: service,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
