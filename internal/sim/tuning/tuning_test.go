package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadShippedTuning(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.DayMs != 500 {
		t.Fatalf("day_ms = %d", tune.DayMs)
	}
	if tune.CampaignStart != "1939-09-01" || tune.CampaignEnd != "1945-05-08" {
		t.Fatalf("campaign window = %s..%s", tune.CampaignStart, tune.CampaignEnd)
	}
	if tune.LeadSpawnIntervalDays != 90 {
		t.Fatalf("spawn interval = %d", tune.LeadSpawnIntervalDays)
	}
	if tune.HomeBase.Top != 45 || tune.HomeBase.Left != 52 {
		t.Fatalf("home base = %+v", tune.HomeBase)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("day_ms: 50\nrecruit_cost: 99\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.DayMs != 50 || tune.RecruitCost != 99 {
		t.Fatalf("overrides not applied: %+v", tune)
	}
	// Untouched keys keep their defaults.
	if tune.LeadTTLRunningSeconds != 20 {
		t.Fatalf("ttl default lost: %d", tune.LeadTTLRunningSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
