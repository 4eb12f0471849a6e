package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so ambient shell state cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_SERVICE_NAME",
		"HTTP_HOST",
		"HTTP_PORT",
		"MYSQL_DSN",
		"MYSQL_MAX_OPEN_CONNS",
		"MYSQL_MAX_IDLE_CONNS",
		"MYSQL_CONN_MAX_LIFETIME_MINUTES",
		"LOG_LEVEL",
		"PAYMENTS_LEGACY_BRIDGE_ENABLED",
		"PAYMENTS_DEFAULT_PROVIDER",
		"PAYMENTS_HEALTH_CHECK_TIMEOUT_SECONDS",
		"PAYMENTS_HEALTH_PROBE_INTERVAL_MINUTES",
		"PAYMENTS_ROLLOUT_JSON",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.App.ServiceName != "pos-payments" {
		t.Fatalf("expected default service name, got %q", cfg.App.ServiceName)
	}
	if cfg.HTTP.Host != "0.0.0.0" || cfg.HTTP.Port != "8080" {
		t.Fatalf("expected default HTTP binding, got %s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.Registry.LegacyBridgeEnabled {
		t.Fatal("legacy bridge must default to disabled")
	}
	if cfg.Registry.DefaultProvider != "cash" {
		t.Fatalf("expected cash as default provider, got %q", cfg.Registry.DefaultProvider)
	}
	if cfg.Registry.HealthCheckTimeout != 5*time.Second {
		t.Fatalf("expected 5s health check timeout, got %v", cfg.Registry.HealthCheckTimeout)
	}
	if len(cfg.Rollout.Entries) != 0 {
		t.Fatalf("expected no rollout entries, got %d", len(cfg.Rollout.Entries))
	}
}

func TestLoadRequiresDSNOnlyWithLegacyBridge(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYMENTS_LEGACY_BRIDGE_ENABLED", "true")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "MYSQL_DSN") {
		t.Fatalf("expected MYSQL_DSN error with the bridge enabled, got %v", err)
	}

	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/pos")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load with DSN, got %v", err)
	}
	if !cfg.Registry.LegacyBridgeEnabled {
		t.Fatal("expected legacy bridge enabled")
	}
	if cfg.MySQL.DSN == "" {
		t.Fatal("expected DSN carried into config")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_SERVICE_NAME", "pos-payments-staging")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PAYMENTS_DEFAULT_PROVIDER", "legacy")
	t.Setenv("PAYMENTS_HEALTH_CHECK_TIMEOUT_SECONDS", "2")
	t.Setenv("MYSQL_MAX_OPEN_CONNS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load, got %v", err)
	}
	if cfg.App.ServiceName != "pos-payments-staging" {
		t.Fatalf("expected overridden service name, got %q", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "9090" {
		t.Fatalf("expected overridden port, got %q", cfg.HTTP.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected overridden log level, got %q", cfg.Log.Level)
	}
	if cfg.Registry.DefaultProvider != "legacy" {
		t.Fatalf("expected overridden default provider, got %q", cfg.Registry.DefaultProvider)
	}
	if cfg.Registry.HealthCheckTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %v", cfg.Registry.HealthCheckTimeout)
	}
	if cfg.MySQL.MaxOpenConns != 25 {
		t.Fatalf("expected 25 open conns, got %d", cfg.MySQL.MaxOpenConns)
	}
}

func TestLoadParsesRolloutJSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYMENTS_ROLLOUT_JSON", `[
		{"method": "CARD", "tenant_ids": ["tenant-a", "tenant-b"], "rollout_percentage": 25},
		{"method": "MOBILE_PAY", "tenant_ids": ["tenant-a"], "rollout_percentage": 100}
	]`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load, got %v", err)
	}
	if len(cfg.Rollout.Entries) != 2 {
		t.Fatalf("expected 2 rollout entries, got %d", len(cfg.Rollout.Entries))
	}

	first := cfg.Rollout.Entries[0]
	if first.Method != "CARD" || first.RolloutPercentage != 25 || len(first.TenantIDs) != 2 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
}

func TestLoadRejectsBadRolloutJSON(t *testing.T) {
	clearEnv(t)

	t.Setenv("PAYMENTS_ROLLOUT_JSON", `{not json`)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected JSON parse error, got %v", err)
	}

	t.Setenv("PAYMENTS_ROLLOUT_JSON", `[{"tenant_ids": ["a"], "rollout_percentage": 10}]`)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "missing a method") {
		t.Fatalf("expected missing-method error, got %v", err)
	}

	t.Setenv("PAYMENTS_ROLLOUT_JSON", `[{"method": "CARD", "rollout_percentage": 140}]`)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "0-100") {
		t.Fatalf("expected percentage range error, got %v", err)
	}
}
