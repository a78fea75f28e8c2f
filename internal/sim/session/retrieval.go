package session

import (
	"time"

	"kulturkampf/internal/protocol"
)

// tickRetrieval advances every live retrieval task from wall time. Progress
// is a pure function of elapsed-minus-paused time, so a slow or skipped tick
// never loses progress.
func (s *Session) tickRetrieval(now time.Time) {
	s.advanceRunning(now)
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.settled() {
			if now.Sub(t.SettledAt) >= s.cfg.RetrievalGrace {
				continue // pruned after the grace window
			}
			kept = append(kept, t)
			continue
		}
		if t.PausedAt.IsZero() {
			s.updateTask(t, now)
			if t.Progress >= 100 {
				s.settleTask(t, now)
			}
		}
		kept = append(kept, t)
	}
	s.tasks = kept
}

func (s *Session) updateTask(t *RetrievalTask, now time.Time) {
	elapsed := now.Sub(t.StartTime) - t.PausedAccum
	if elapsed < 0 {
		elapsed = 0
	}
	p := float64(elapsed) / float64(t.Duration) * 100
	if p > 100 {
		p = 100
	}
	if p < t.Progress {
		p = t.Progress // monotonic
	}
	t.Progress = p
	t.Returning = p >= 50
	// Two legs: outbound to the target for the first half, then home.
	if p < 50 {
		t.Current = lerp(s.cfg.HomeBase, t.Target, p/50)
	} else {
		t.Current = lerp(t.Target, s.cfg.HomeBase, (p-50)/50)
	}
}

// settleTask applies the dispatch-time outcome exactly once, at the moment
// progress first reaches 100.
func (s *Session) settleTask(t *RetrievalTask, now time.Time) {
	if t.settled() {
		return
	}
	t.SettledAt = now
	t.Current = s.cfg.HomeBase

	if t.Failed {
		s.pushEvent(protocol.Event{
			"type":       "MISSION_FAILED",
			"mission_id": t.MissionID,
			"task_id":    t.ID,
			"agent_id":   t.AgentID,
		})
		s.ledgerAppend(LedgerEntry{Kind: "mission_failed", MissionID: t.MissionID, TaskID: t.ID, AgentID: t.AgentID, ArtworkID: t.ArtworkID, Failed: true})
		return
	}

	if a, ok := s.artworks[t.ArtworkID]; ok {
		a.Progress = 100
	}
	s.points += s.cfg.SuccessPoints
	s.progressAdjust -= s.cfg.SuccessBonus
	s.removeMission(t.MissionID)
	s.pushEvent(protocol.Event{
		"type":       "ARTWORK_RECOVERED",
		"mission_id": t.MissionID,
		"task_id":    t.ID,
		"agent_id":   t.AgentID,
		"artwork_id": t.ArtworkID,
		"points":     s.cfg.SuccessPoints,
	})
	s.ledgerAppend(LedgerEntry{Kind: "artwork_recovered", MissionID: t.MissionID, TaskID: t.ID, AgentID: t.AgentID, ArtworkID: t.ArtworkID, Points: s.cfg.SuccessPoints})
	s.persistRecovered()
}

func (s *Session) removeMission(missionID int) {
	for i, m := range s.missions {
		if m.ID == missionID {
			s.missions = append(s.missions[:i], s.missions[i+1:]...)
			return
		}
	}
}

func (s *Session) persistRecovered() {
	if s.store == nil {
		return
	}
	var ids []int
	for _, def := range s.cats.Artworks.Defs {
		if s.artworks[def.ID].Recovered() {
			ids = append(ids, def.ID)
		}
	}
	if err := s.store.Save(ids); err != nil {
		s.lg.Printf("recovered store save: %v", err)
	}
}

// pauseTasks freezes every unsettled task; resumeTasks credits the paused
// span back so elapsed time excludes it.
func (s *Session) pauseTasks(now time.Time) {
	for _, t := range s.tasks {
		if !t.settled() && t.PausedAt.IsZero() {
			t.PausedAt = now
		}
	}
}

func (s *Session) resumeTasks(now time.Time) {
	for _, t := range s.tasks {
		if !t.PausedAt.IsZero() {
			if d := now.Sub(t.PausedAt); d > 0 {
				t.PausedAccum += d
			}
			t.PausedAt = time.Time{}
		}
	}
}
