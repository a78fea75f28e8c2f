package session

import (
	"fmt"
	"sort"
	"time"

	"kulturkampf/internal/protocol"
	"kulturkampf/internal/sim/catalogs"
)

type cmdError struct {
	code string
	msg  string
}

func (e *cmdError) Error() string { return fmt.Sprintf("%s: %s", e.code, e.msg) }

func errc(code, format string, args ...interface{}) error {
	return &cmdError{code: code, msg: fmt.Sprintf(format, args...)}
}

// collectLead acknowledges a lead into a mission and awards collect points.
// Collecting an unknown id that once was a lead is treated as a repeat and
// succeeds without effect; the instant is idempotent from the client's view.
func (s *Session) collectLead(leadID int) error {
	idx := -1
	for i, l := range s.leads {
		if l.ID == leadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		if _, ok := s.collectedLeads[leadID]; ok {
			return nil // already consumed, even if the mission is long gone
		}
		return errc(protocol.ErrInvalidTarget, "unknown lead %d", leadID)
	}
	lead := s.leads[idx]
	s.leads = append(s.leads[:idx], s.leads[idx+1:]...)
	s.collectedLeads[leadID] = struct{}{}

	if a, ok := s.artworks[lead.ArtworkID]; ok && a.Recovered() {
		// Stale lead for an already-recovered artwork: consume silently.
		return nil
	}

	s.nextMissionID++
	m := &Mission{
		ID:             s.nextMissionID,
		LeadID:         lead.ID,
		Title:          lead.Title,
		Description:    lead.Description,
		Pos:            lead.Pos,
		ArtworkID:      lead.ArtworkID,
		AcknowledgedAt: s.clock.Now(),
	}
	s.missions = append(s.missions, m)
	s.points += s.cfg.CollectPoints
	s.pushEvent(protocol.Event{
		"type":       "LEAD_COLLECTED",
		"lead_id":    lead.ID,
		"mission_id": m.ID,
		"points":     s.cfg.CollectPoints,
	})
	s.ledgerAppend(LedgerEntry{Kind: "lead_collected", LeadID: lead.ID, MissionID: m.ID, ArtworkID: m.ArtworkID, Points: s.cfg.CollectPoints})
	return nil
}

// startMission dispatches an available agent on a retrieval. The failure
// outcome is rolled here, at dispatch time; the task merely plays it out.
func (s *Session) startMission(missionID int, now time.Time) error {
	var m *Mission
	for _, cand := range s.missions {
		if cand.ID == missionID {
			m = cand
			break
		}
	}
	if m == nil {
		return errc(protocol.ErrInvalidTarget, "unknown mission %d", missionID)
	}
	for _, t := range s.tasks {
		if t.MissionID == missionID && t.Progress < 100 {
			return errc(protocol.ErrConflict, "mission %d already has a retrieval in flight", missionID)
		}
	}
	agent := s.availableAgent()
	if agent == nil {
		return errc(protocol.ErrNoAgent, "no agent available")
	}

	chance := s.failureChance()
	failed := s.rng.Float64() < chance

	travel := dist(s.cfg.HomeBase, m.Pos)
	duration := s.cfg.RetrievalBase + time.Duration(travel)*s.cfg.RetrievalPerPercent

	s.nextTaskID++
	t := &RetrievalTask{
		ID:        s.nextTaskID,
		MissionID: m.ID,
		AgentID:   agent.Def.ID,
		ArtworkID: m.ArtworkID,
		StartTime: now,
		Duration:  duration,
		Current:   s.cfg.HomeBase,
		Target:    m.Pos,
		Failed:    failed,
	}
	if !s.clock.Running() {
		t.PausedAt = now
	}
	s.tasks = append(s.tasks, t)
	s.pushEvent(protocol.Event{
		"type":       "MISSION_DISPATCHED",
		"mission_id": m.ID,
		"task_id":    t.ID,
		"agent_id":   t.AgentID,
	})
	s.ledgerAppend(LedgerEntry{Kind: "mission_dispatched", MissionID: m.ID, TaskID: t.ID, AgentID: t.AgentID, ArtworkID: t.ArtworkID})
	return nil
}

// availableAgent returns the lowest-id recruited agent with no live task.
func (s *Session) availableAgent() *AgentState {
	busy := make(map[int]bool, len(s.tasks))
	for _, t := range s.tasks {
		if t.Progress < 100 {
			busy[t.AgentID] = true
		}
	}
	sorted := make([]*AgentState, len(s.agents))
	copy(sorted, s.agents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Def.ID < sorted[j].Def.ID })
	for _, a := range sorted {
		if !busy[a.Def.ID] {
			return a
		}
	}
	return nil
}

// failureChance applies every unlocked failure-reduction skill to the base
// chance, per level, floored at the configured minimum.
func (s *Session) failureChance() float64 {
	chance := s.cfg.BaseFailureChance
	for _, sk := range s.skills {
		if sk.Def.EffectType != catalogs.EffectFailureReduction || sk.Level == 0 {
			continue
		}
		chance -= float64(sk.Level) * sk.Def.MagnitudePerLevel
	}
	if chance < s.cfg.MinFailureChance {
		chance = s.cfg.MinFailureChance
	}
	return chance
}
