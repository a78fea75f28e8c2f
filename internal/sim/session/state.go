package session

import (
	"sort"

	"kulturkampf/internal/protocol"
)

// stateMsg snapshots the full presentation contract. Pending events are
// drained into the message; they ride exactly one STATE push.
func (s *Session) stateMsg() protocol.StateMsg {
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Date:            s.clock.Now().Format("2006-01-02"),
		DayNumber:       s.clock.CurrentDay(),
		Running:         s.clock.Running(),
		SpeedMs:         s.clock.SpeedMs(),

		Leads:    make([]protocol.LeadObs, 0, len(s.leads)),
		Missions: make([]protocol.MissionObs, 0, len(s.missions)),
		Tasks:    make([]protocol.TaskObs, 0, len(s.tasks)),
		Agents:   make([]protocol.AgentObs, 0, len(s.agents)),
		Skills:   make([]protocol.SkillObs, 0, len(s.skills)),
		Artworks: make([]protocol.ArtworkObs, 0, len(s.artworks)),

		IntelligencePoints: s.points,
		OverallProgress:    s.overallProgress(),
		RecoveredCount:     s.recoveredCount(),

		Events: s.events,
	}
	s.events = nil

	for _, l := range s.leads {
		msg.Leads = append(msg.Leads, protocol.LeadObs{
			ID:          l.ID,
			Top:         l.Pos.Top,
			Left:        l.Pos.Left,
			Title:       l.Title,
			Description: l.Description,
			ArtworkID:   l.ArtworkID,
		})
	}
	for _, m := range s.missions {
		msg.Missions = append(msg.Missions, protocol.MissionObs{
			ID:             m.ID,
			LeadID:         m.LeadID,
			Title:          m.Title,
			Description:    m.Description,
			Top:            m.Pos.Top,
			Left:           m.Pos.Left,
			ArtworkID:      m.ArtworkID,
			AcknowledgedAt: m.AcknowledgedAt.Format("2006-01-02"),
		})
	}

	busy := make(map[int]bool, len(s.tasks))
	for _, t := range s.tasks {
		if t.Progress < 100 {
			busy[t.AgentID] = true
		}
		msg.Tasks = append(msg.Tasks, protocol.TaskObs{
			ID:          t.ID,
			MissionID:   t.MissionID,
			AgentID:     t.AgentID,
			ArtworkID:   t.ArtworkID,
			Progress:    t.Progress,
			CurrentTop:  t.Current.Top,
			CurrentLeft: t.Current.Left,
			TargetTop:   t.Target.Top,
			TargetLeft:  t.Target.Left,
			Returning:   t.Returning,
			Done:        t.Progress >= 100,
			Failed:      t.settled() && t.Failed,
		})
	}
	for _, a := range s.agents {
		msg.Agents = append(msg.Agents, protocol.AgentObs{
			ID:             a.Def.ID,
			Name:           a.Def.Name,
			Codename:       a.Def.Codename,
			Specialization: a.Def.Specialization,
			Busy:           busy[a.Def.ID],
		})
	}
	sort.Slice(msg.Agents, func(i, j int) bool { return msg.Agents[i].ID < msg.Agents[j].ID })

	for _, def := range s.cats.Skills.Defs {
		sk := s.skills[def.ID]
		msg.Skills = append(msg.Skills, protocol.SkillObs{
			ID:       def.ID,
			Name:     def.Name,
			Level:    sk.Level,
			MaxLevel: def.MaxLevel,
			Cost:     def.Cost,
			Unlocked: sk.Unlocked(),
		})
	}
	for _, def := range s.cats.Artworks.Defs {
		msg.Artworks = append(msg.Artworks, protocol.ArtworkObs{
			ID:       def.ID,
			Progress: s.artworks[def.ID].Progress,
		})
	}
	return msg
}
