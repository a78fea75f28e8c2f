package session

import (
	"kulturkampf/internal/protocol"
	"kulturkampf/internal/sim/catalogs"
)

// recruitAgent spends points to add a random not-yet-recruited catalog agent
// to the roster.
func (s *Session) recruitAgent() error {
	have := make(map[int]bool, len(s.agents))
	for _, a := range s.agents {
		have[a.Def.ID] = true
	}
	var eligible []catalogs.AgentDef
	for _, def := range s.cats.Agents.Defs {
		if !have[def.ID] {
			eligible = append(eligible, def)
		}
	}
	if len(eligible) == 0 {
		return errc(protocol.ErrInvalidTarget, "every agent is already recruited")
	}
	if s.points < s.cfg.RecruitCost {
		return errc(protocol.ErrNoPoints, "recruiting costs %d points, have %d", s.cfg.RecruitCost, s.points)
	}
	def := eligible[s.rng.Intn(len(eligible))]
	s.points -= s.cfg.RecruitCost
	s.agents = append(s.agents, &AgentState{Def: def})
	s.pushEvent(protocol.Event{
		"type":     "AGENT_RECRUITED",
		"agent_id": def.ID,
		"points":   -s.cfg.RecruitCost,
	})
	s.ledgerAppend(LedgerEntry{Kind: "agent_recruited", AgentID: def.ID, Points: -s.cfg.RecruitCost})
	return nil
}

// levelUpSkill spends points to raise a skill one level, up to its cap.
// A skill's parent must be unlocked first.
func (s *Session) levelUpSkill(skillID int) error {
	sk, ok := s.skills[skillID]
	if !ok {
		return errc(protocol.ErrInvalidTarget, "unknown skill %d", skillID)
	}
	if sk.Level >= sk.Def.MaxLevel {
		return errc(protocol.ErrConflict, "skill %d is at max level %d", skillID, sk.Def.MaxLevel)
	}
	if sk.Def.ParentID != 0 {
		parent, ok := s.skills[sk.Def.ParentID]
		if !ok || !parent.Unlocked() {
			return errc(protocol.ErrConflict, "skill %d requires skill %d first", skillID, sk.Def.ParentID)
		}
	}
	if s.points < sk.Def.Cost {
		return errc(protocol.ErrNoPoints, "skill %d costs %d points, have %d", skillID, sk.Def.Cost, s.points)
	}
	s.points -= sk.Def.Cost
	sk.Level++
	if sk.Def.EffectType == catalogs.EffectSpawnRate {
		s.rescheduleSpawns()
	}
	s.pushEvent(protocol.Event{
		"type":     "SKILL_LEVELED",
		"skill_id": skillID,
		"level":    sk.Level,
		"points":   -sk.Def.Cost,
	})
	s.ledgerAppend(LedgerEntry{Kind: "skill_leveled", SkillID: skillID, Points: -sk.Def.Cost})
	return nil
}
