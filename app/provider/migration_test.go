package provider

import "testing"

func TestShouldMigrateMethodRequiresAllowList(t *testing.T) {
	configs := []MigrationConfig{
		{Method: "CARD", TenantIDs: []string{"tenant-a"}, RolloutPercentage: 100},
	}

	if ShouldMigrateMethod("CARD", "tenant-b", configs) {
		t.Fatal("tenant outside the allow-list must never migrate")
	}
	if !ShouldMigrateMethod("CARD", "tenant-a", configs) {
		t.Fatal("allow-listed tenant at 100%% must migrate")
	}
	if ShouldMigrateMethod("CASH", "tenant-a", configs) {
		t.Fatal("methods without a config must never migrate")
	}
}

func TestShouldMigrateMethodZeroPercentage(t *testing.T) {
	configs := []MigrationConfig{
		{Method: "CARD", TenantIDs: []string{"tenant-a"}, RolloutPercentage: 0},
	}
	if ShouldMigrateMethod("CARD", "tenant-a", configs) {
		t.Fatal("0%% rollout must migrate nobody")
	}
}

func TestShouldMigrateMethodIsDeterministic(t *testing.T) {
	configs := []MigrationConfig{
		{Method: "CARD", TenantIDs: []string{"tenant-a"}, RolloutPercentage: 40},
	}

	first := ShouldMigrateMethod("CARD", "tenant-a", configs)
	for i := 0; i < 50; i++ {
		if ShouldMigrateMethod("CARD", "tenant-a", configs) != first {
			t.Fatal("rollout decision flapped between calls")
		}
	}
}

// Raising the percentage may only ever add tenants: once a tenant migrates
// at some percentage it must stay migrated at every higher one.
func TestShouldMigrateMethodIsMonotonic(t *testing.T) {
	tenants := []string{"tenant-a", "tenant-b", "cafe-west", "cafe-east", "t-1000"}

	for _, tenant := range tenants {
		migrated := false
		for pct := 0; pct <= 100; pct++ {
			configs := []MigrationConfig{
				{Method: "CARD", TenantIDs: []string{tenant}, RolloutPercentage: pct},
			}
			decision := ShouldMigrateMethod("CARD", tenant, configs)
			if migrated && !decision {
				t.Fatalf("tenant %q migrated at a lower percentage but not at %d", tenant, pct)
			}
			if decision {
				migrated = true
			}
		}
		if !migrated {
			t.Fatalf("tenant %q never migrated even at 100%%", tenant)
		}
	}
}

func TestRolloutBucketRange(t *testing.T) {
	tenants := []string{"", "a", "tenant-a", "tenant-b", "very-long-tenant-identifier-0001"}
	for _, tenant := range tenants {
		bucket := rolloutBucket(tenant)
		if bucket < 1 || bucket > 100 {
			t.Fatalf("bucket for %q out of range: %d", tenant, bucket)
		}
	}
}
