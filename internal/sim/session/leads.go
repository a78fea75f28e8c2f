package session

import (
	"fmt"
	"math"
	"time"

	"kulturkampf/internal/protocol"
	"kulturkampf/internal/sim/catalogs"
)

// spawnLead places one new lead for a random undiscovered artwork. Runs on
// the recurring spawn schedule and once at campaign bootstrap.
func (s *Session) spawnLead() {
	art := s.pickSpawnArtwork()
	if art == nil {
		return
	}
	pos, ok := s.placeMarker()
	if !ok {
		s.lg.Printf("lead spawn skipped: no clear position after %d attempts", s.cfg.SpawnMaxAttempts)
		return
	}
	s.nextLeadID++
	lead := &Lead{
		ID:           s.nextLeadID,
		Pos:          pos,
		Title:        fmt.Sprintf("Intelligence report #%d", s.nextLeadID),
		Description:  fmt.Sprintf("Agents report a trace of %q near %s.", art.Def.Name, art.Def.Location),
		ArtworkID:    art.Def.ID,
		CreatedRunMs: s.runningMs,
	}
	s.leads = append(s.leads, lead)
	s.pushEvent(protocol.Event{
		"type":       "LEAD_SPAWNED",
		"lead_id":    lead.ID,
		"artwork_id": lead.ArtworkID,
		"top":        lead.Pos.Top,
		"left":       lead.Pos.Left,
	})
	s.ledgerAppend(LedgerEntry{Kind: "lead_spawned", LeadID: lead.ID, ArtworkID: lead.ArtworkID})
}

// pickSpawnArtwork selects a random catalog artwork that is neither
// recovered nor already represented by a live lead or mission.
func (s *Session) pickSpawnArtwork() *ArtworkState {
	taken := make(map[int]bool, len(s.leads)+len(s.missions))
	for _, l := range s.leads {
		taken[l.ArtworkID] = true
	}
	for _, m := range s.missions {
		taken[m.ArtworkID] = true
	}
	var eligible []*ArtworkState
	for _, def := range s.cats.Artworks.Defs {
		a := s.artworks[def.ID]
		if a.Recovered() || taken[a.Def.ID] {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[s.rng.Intn(len(eligible))]
}

// placeMarker draws random positions inside the safe zone until one clears
// the minimum distance to every live lead, giving up after the configured
// attempt budget.
func (s *Session) placeMarker() (Pos, bool) {
	topSpan := 100 - s.cfg.MarginTop - s.cfg.MarginBottom
	leftSpan := 100 - 2*s.cfg.MarginSide
	for i := 0; i < s.cfg.SpawnMaxAttempts; i++ {
		p := Pos{
			Top:  s.cfg.MarginTop + s.rng.Float64()*topSpan,
			Left: s.cfg.MarginSide + s.rng.Float64()*leftSpan,
		}
		if s.clearOfLeads(p) {
			return p, true
		}
	}
	return Pos{}, false
}

func (s *Session) clearOfLeads(p Pos) bool {
	for _, l := range s.leads {
		if dist(p, l.Pos) < s.cfg.LeadMinDistance {
			return false
		}
	}
	return true
}

// spawnInterval divides the base interval by the informant bonus: every
// level of a spawn-rate skill surfaces leads proportionally faster.
func (s *Session) spawnInterval() int {
	bonus := 0.0
	for _, sk := range s.skills {
		if sk.Def.EffectType == catalogs.EffectSpawnRate {
			bonus += float64(sk.Level) * sk.Def.MagnitudePerLevel
		}
	}
	days := int(math.Round(float64(s.cfg.LeadSpawnIntervalDays) / (1 + bonus)))
	if days < 1 {
		days = 1
	}
	return days
}

// rescheduleSpawns replaces the recurring spawn schedule after a spawn-rate
// skill changes. The phase restarts from the current date.
func (s *Session) rescheduleSpawns() {
	s.clock.Cancel(s.spawnSchedID)
	s.spawnSchedID = s.clock.ScheduleEvery(s.spawnInterval(), func() { s.spawnLead() })
}

// sweepLeads expires leads whose accumulated running time exceeds the TTL.
// Expiry costs campaign progress but never intelligence points.
func (s *Session) sweepLeads(now time.Time) {
	s.advanceRunning(now)
	kept := s.leads[:0]
	for _, l := range s.leads {
		if s.runningMs-l.CreatedRunMs < s.cfg.LeadTTL.Milliseconds() {
			kept = append(kept, l)
			continue
		}
		s.progressAdjust += s.cfg.ExpiryPenalty
		s.pushEvent(protocol.Event{
			"type":       "LEAD_EXPIRED",
			"lead_id":    l.ID,
			"artwork_id": l.ArtworkID,
		})
		s.ledgerAppend(LedgerEntry{Kind: "lead_expired", LeadID: l.ID, ArtworkID: l.ArtworkID})
	}
	changed := len(kept) != len(s.leads)
	s.leads = kept
	if changed {
		s.broadcastState()
	}
}

// advanceRunning folds wall time into the running-time accumulator. Only
// time spent with the clock running counts, which is what freezes lead TTLs
// across pauses.
func (s *Session) advanceRunning(now time.Time) {
	if !s.lastTick.IsZero() && s.clock.Running() {
		if d := now.Sub(s.lastTick); d > 0 {
			s.runningMs += d.Milliseconds()
		}
	}
	s.lastTick = now
}
