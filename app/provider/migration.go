package provider

import "github.com/cespare/xxhash/v2"

// MigrationConfig describes a gradual rollout of a native provider for one
// payment method. Only tenants in TenantIDs are eligible; of those, the
// configured percentage is routed off the legacy bridge.
type MigrationConfig struct {
	Method            string   `json:"method"`
	TenantIDs         []string `json:"tenant_ids"`
	RolloutPercentage int      `json:"rollout_percentage"`
}

// ShouldMigrateMethod decides whether a tenant's traffic for a method
// bypasses the legacy bridge. Pure and deterministic: a tenant always lands
// on the same side of a given rollout percentage, so its traffic never flaps
// between providers. Raising the percentage only ever adds tenants.
func ShouldMigrateMethod(method, tenantID string, configs []MigrationConfig) bool {
	for _, cfg := range configs {
		if cfg.Method != method {
			continue
		}
		if !containsString(cfg.TenantIDs, tenantID) {
			return false
		}
		if cfg.RolloutPercentage >= 100 {
			return true
		}
		if cfg.RolloutPercentage <= 0 {
			return false
		}
		return rolloutBucket(tenantID) <= cfg.RolloutPercentage
	}
	return false
}

// rolloutBucket maps a tenant id onto 1..100 using xxhash64, chosen over
// character-code summation for even distribution across tenant ids with
// similar prefixes. Rollout tests depend on this exact function.
func rolloutBucket(tenantID string) int {
	return int(xxhash.Sum64String(tenantID)%100) + 1
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
