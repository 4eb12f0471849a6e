package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	MySQL    MySQLConfig
	Log      LogConfig
	Registry RegistryConfig
	Rollout  RolloutConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type RegistryConfig struct {
	// LegacyBridgeEnabled is the deployment-level switch for whether the
	// legacy bridge provider is registered at all.
	LegacyBridgeEnabled bool
	DefaultProvider     string
	HealthCheckTimeout  time.Duration
	HealthProbeInterval time.Duration
}

// RolloutEntry mirrors one migration config parsed from
// PAYMENTS_ROLLOUT_JSON.
type RolloutEntry struct {
	Method            string   `json:"method"`
	TenantIDs         []string `json:"tenant_ids"`
	RolloutPercentage int      `json:"rollout_percentage"`
}

type RolloutConfig struct {
	Entries []RolloutEntry
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	legacyEnabled := getBoolEnv("PAYMENTS_LEGACY_BRIDGE_ENABLED", false)

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if legacyEnabled && mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required when the legacy bridge is enabled")
	}

	rollout, err := parseRolloutEnv(os.Getenv("PAYMENTS_ROLLOUT_JSON"))
	if err != nil {
		return nil, err
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "pos-payments"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Registry: RegistryConfig{
			LegacyBridgeEnabled: legacyEnabled,
			DefaultProvider:     getEnv("PAYMENTS_DEFAULT_PROVIDER", "cash"),
			HealthCheckTimeout:  getSecondsEnv("PAYMENTS_HEALTH_CHECK_TIMEOUT_SECONDS", 5*time.Second),
			HealthProbeInterval: getMinutesEnv("PAYMENTS_HEALTH_PROBE_INTERVAL_MINUTES", time.Minute),
		},
		Rollout: RolloutConfig{
			Entries: rollout,
		},
	}, nil
}

func parseRolloutEnv(raw string) ([]RolloutEntry, error) {
	if raw == "" {
		return nil, nil
	}

	var entries []RolloutEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("PAYMENTS_ROLLOUT_JSON is not valid JSON: %w", err)
	}
	for i, entry := range entries {
		if entry.Method == "" {
			return nil, fmt.Errorf("PAYMENTS_ROLLOUT_JSON entry %d is missing a method", i)
		}
		if entry.RolloutPercentage < 0 || entry.RolloutPercentage > 100 {
			return nil, fmt.Errorf("PAYMENTS_ROLLOUT_JSON entry %d has rollout_percentage outside 0-100", i)
		}
	}
	return entries, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
