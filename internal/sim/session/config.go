package session

import (
	"fmt"
	"time"

	"kulturkampf/internal/sim/tuning"
)

// Config carries every knob the session reads. Zero values are filled in
// by applyDefaults so tests can construct partial configs.
type Config struct {
	Seed int64

	DayMs         int
	CampaignStart time.Time
	CampaignEnd   time.Time

	LeadSpawnIntervalDays int
	LeadTTL               time.Duration // accumulated running time
	LeadMinDistance       float64
	SpawnMaxAttempts      int

	MarginTop    float64
	MarginBottom float64
	MarginSide   float64
	HomeBase     Pos

	RetrievalBase       time.Duration
	RetrievalPerPercent time.Duration // per percent-unit of map distance
	RetrievalGrace      time.Duration

	BaseFailureChance float64
	MinFailureChance  float64

	ProgressTick time.Duration
	SweepTick    time.Duration

	StartingPoints int
	CollectPoints  int
	SuccessPoints  int
	RecruitCost    int

	ExpiryPenalty float64
	SuccessBonus  float64
}

func (c *Config) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.DayMs <= 0 {
		c.DayMs = 500
	}
	if c.CampaignStart.IsZero() {
		c.CampaignStart = time.Date(1939, time.September, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.CampaignEnd.IsZero() {
		c.CampaignEnd = time.Date(1945, time.May, 8, 0, 0, 0, 0, time.UTC)
	}
	if c.LeadSpawnIntervalDays <= 0 {
		c.LeadSpawnIntervalDays = 90
	}
	if c.LeadTTL <= 0 {
		c.LeadTTL = 20 * time.Second
	}
	if c.LeadMinDistance <= 0 {
		c.LeadMinDistance = 10
	}
	if c.SpawnMaxAttempts <= 0 {
		c.SpawnMaxAttempts = 100
	}
	if c.MarginTop <= 0 {
		c.MarginTop = 25
	}
	if c.MarginBottom <= 0 {
		c.MarginBottom = 25
	}
	if c.MarginSide <= 0 {
		c.MarginSide = 5
	}
	if c.HomeBase == (Pos{}) {
		c.HomeBase = Pos{Top: 45, Left: 52}
	}
	if c.RetrievalBase <= 0 {
		c.RetrievalBase = 8 * time.Second
	}
	if c.RetrievalPerPercent <= 0 {
		c.RetrievalPerPercent = 100 * time.Millisecond
	}
	if c.RetrievalGrace <= 0 {
		c.RetrievalGrace = 2 * time.Second
	}
	if c.BaseFailureChance <= 0 {
		c.BaseFailureChance = 0.30
	}
	if c.MinFailureChance <= 0 {
		c.MinFailureChance = 0.05
	}
	if c.ProgressTick <= 0 {
		c.ProgressTick = 100 * time.Millisecond
	}
	if c.SweepTick <= 0 {
		c.SweepTick = time.Second
	}
	if c.StartingPoints <= 0 {
		c.StartingPoints = 125
	}
	if c.CollectPoints <= 0 {
		c.CollectPoints = 10
	}
	if c.SuccessPoints <= 0 {
		c.SuccessPoints = 25
	}
	if c.RecruitCost <= 0 {
		c.RecruitCost = 50
	}
	if c.ExpiryPenalty <= 0 {
		c.ExpiryPenalty = 2
	}
	if c.SuccessBonus <= 0 {
		c.SuccessBonus = 5
	}
}

// ConfigFromTuning maps the on-disk tuning document onto a Config.
func ConfigFromTuning(t tuning.Tuning) (Config, error) {
	start, err := time.ParseInLocation("2006-01-02", t.CampaignStart, time.UTC)
	if err != nil {
		return Config{}, fmt.Errorf("campaign_start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", t.CampaignEnd, time.UTC)
	if err != nil {
		return Config{}, fmt.Errorf("campaign_end: %w", err)
	}
	if !end.After(start) {
		return Config{}, fmt.Errorf("campaign_end %s not after campaign_start %s", t.CampaignEnd, t.CampaignStart)
	}
	cfg := Config{
		DayMs:                 t.DayMs,
		CampaignStart:         start,
		CampaignEnd:           end,
		LeadSpawnIntervalDays: t.LeadSpawnIntervalDays,
		LeadTTL:               time.Duration(t.LeadTTLRunningSeconds) * time.Second,
		LeadMinDistance:       t.LeadMinDistance,
		SpawnMaxAttempts:      t.SpawnMaxAttempts,
		MarginTop:             t.MapMargins.Top,
		MarginBottom:          t.MapMargins.Bottom,
		MarginSide:            t.MapMargins.Side,
		HomeBase:              Pos{Top: t.HomeBase.Top, Left: t.HomeBase.Left},
		RetrievalBase:         time.Duration(t.RetrievalBaseMs) * time.Millisecond,
		RetrievalPerPercent:   time.Duration(t.RetrievalMsPerPercent) * time.Millisecond,
		RetrievalGrace:        time.Duration(t.RetrievalGraceMs) * time.Millisecond,
		BaseFailureChance:     t.BaseFailureChance,
		MinFailureChance:      t.MinFailureChance,
		ProgressTick:          time.Duration(t.ProgressTickMs) * time.Millisecond,
		SweepTick:             time.Duration(t.SweepTickMs) * time.Millisecond,
		StartingPoints:        t.StartingPoints,
		CollectPoints:         t.CollectPoints,
		SuccessPoints:         t.SuccessPoints,
		RecruitCost:           t.RecruitCost,
		ExpiryPenalty:         t.ExpiryPenalty,
		SuccessBonus:          t.SuccessBonus,
	}
	cfg.applyDefaults()
	return cfg, nil
}
