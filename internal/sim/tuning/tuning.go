// Package tuning holds the game-balance knobs. Everything here is
// configuration, not architecture: the session treats these values as given.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	DayMs         int    `yaml:"day_ms"`
	CampaignStart string `yaml:"campaign_start"`
	CampaignEnd   string `yaml:"campaign_end"`

	LeadSpawnIntervalDays int     `yaml:"lead_spawn_interval_days"`
	LeadTTLRunningSeconds int     `yaml:"lead_ttl_running_seconds"`
	LeadMinDistance       float64 `yaml:"lead_min_distance"`
	SpawnMaxAttempts      int     `yaml:"spawn_max_attempts"`

	MapMargins MapMargins `yaml:"map_margins"`
	HomeBase   MapPoint   `yaml:"home_base"`

	RetrievalBaseMs       int     `yaml:"retrieval_base_ms"`
	RetrievalMsPerPercent int     `yaml:"retrieval_ms_per_percent"`
	RetrievalGraceMs      int     `yaml:"retrieval_grace_ms"`
	BaseFailureChance     float64 `yaml:"base_failure_chance"`
	MinFailureChance      float64 `yaml:"min_failure_chance"`

	ProgressTickMs int `yaml:"progress_tick_ms"`
	SweepTickMs    int `yaml:"sweep_tick_ms"`

	StartingPoints int     `yaml:"starting_points"`
	CollectPoints  int     `yaml:"collect_points"`
	SuccessPoints  int     `yaml:"success_points"`
	RecruitCost    int     `yaml:"recruit_cost"`
	ExpiryPenalty  float64 `yaml:"expiry_penalty"`
	SuccessBonus   float64 `yaml:"success_bonus"`
}

// MapMargins defines the safe spawn region in map-percentage space: leads
// must keep clear of the UI chrome at the top and bottom and of the map edge.
type MapMargins struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Side   float64 `yaml:"side"`
}

// MapPoint is a fixed map-percentage coordinate.
type MapPoint struct {
	Top  float64 `yaml:"top"`
	Left float64 `yaml:"left"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",

		DayMs:         500,
		CampaignStart: "1939-09-01",
		CampaignEnd:   "1945-05-08",

		LeadSpawnIntervalDays: 90,
		LeadTTLRunningSeconds: 20,
		LeadMinDistance:       10,
		SpawnMaxAttempts:      100,

		MapMargins: MapMargins{Top: 25, Bottom: 25, Side: 5},
		HomeBase:   MapPoint{Top: 45, Left: 52},

		RetrievalBaseMs:       8000,
		RetrievalMsPerPercent: 100,
		RetrievalGraceMs:      2000,
		BaseFailureChance:     0.30,
		MinFailureChance:      0.05,

		ProgressTickMs: 100,
		SweepTickMs:    1000,

		StartingPoints: 125,
		CollectPoints:  10,
		SuccessPoints:  25,
		RecruitCost:    50,
		ExpiryPenalty:  2,
		SuccessBonus:   5,
	}
}
