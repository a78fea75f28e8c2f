package session

import (
	"errors"
	"time"

	"kulturkampf/internal/protocol"
)

// applyCmd executes every instant in a CMD, emitting one ACTION_RESULT
// event per instant. A bad instant never aborts the batch.
func (s *Session) applyCmd(env cmdEnvelope, now time.Time) {
	for _, inst := range env.msg.Instants {
		err := s.applyInstant(inst, now)
		result := protocol.Event{
			"type":      "ACTION_RESULT",
			"client_id": env.clientID,
			"id":        inst.ID,
			"action":    inst.Type,
			"ok":        err == nil,
		}
		if err != nil {
			var ce *cmdError
			if errors.As(err, &ce) {
				result["code"] = ce.code
				result["message"] = ce.msg
			} else {
				result["code"] = protocol.ErrInternal
				result["message"] = err.Error()
			}
			s.lg.Printf("instant %s (%s) rejected: %v", inst.ID, inst.Type, err)
		}
		s.pushEvent(result)
	}
}

func (s *Session) applyInstant(inst protocol.InstantReq, now time.Time) error {
	switch inst.Type {
	case protocol.InstCollectLead:
		return s.collectLead(inst.LeadID)
	case protocol.InstStartMission:
		return s.startMission(inst.MissionID, now)
	case protocol.InstAddAgent:
		return s.recruitAgent()
	case protocol.InstLevelUpSkill:
		return s.levelUpSkill(inst.SkillID)
	case protocol.InstClockStart:
		s.clockStart(now)
		return nil
	case protocol.InstClockStop:
		s.clockStop(now)
		return nil
	case protocol.InstClockToggle:
		if s.clock.Running() {
			s.clockStop(now)
		} else {
			s.clockStart(now)
		}
		return nil
	case protocol.InstClockSpeed:
		if inst.SpeedMs <= 0 {
			return errc(protocol.ErrBadRequest, "speed_ms must be positive, got %d", inst.SpeedMs)
		}
		s.clock.SetSpeed(inst.SpeedMs)
		return nil
	case protocol.InstClockForward:
		if inst.Days <= 0 {
			return errc(protocol.ErrBadRequest, "days must be positive, got %d", inst.Days)
		}
		s.advanceRunning(now)
		s.invoke(s.clock.AdvanceDays(inst.Days))
		return nil
	case protocol.InstClockReset:
		return s.clockReset(inst.Date, now)
	default:
		return errc(protocol.ErrBadRequest, "unknown instant type %q", inst.Type)
	}
}

// clockStart resumes the calendar and unfreezes tasks and lead TTLs. The
// first start of a campaign also seeds the opening lead.
func (s *Session) clockStart(now time.Time) {
	if s.clock.Running() {
		return
	}
	s.advanceRunning(now)
	s.clock.Start()
	s.resumeTasks(now)
	if !s.bootstrapped {
		s.bootstrapped = true
		s.spawnLead()
	}
}

func (s *Session) clockStop(now time.Time) {
	if !s.clock.Running() {
		return
	}
	s.advanceRunning(now)
	s.clock.Stop()
	s.pauseTasks(now)
}

// clockReset moves the calendar to an explicit date (or the campaign start
// when empty) and stops it. A forward move runs the skipped schedules; a
// backward move fires nothing.
func (s *Session) clockReset(date string, now time.Time) error {
	var target time.Time
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return errc(protocol.ErrBadRequest, "bad date %q", date)
		}
		target = parsed
	}
	s.advanceRunning(now)
	wasRunning := s.clock.Running()
	due := s.clock.Reset(target)
	if wasRunning {
		s.pauseTasks(now)
	}
	s.invoke(due)
	return nil
}
