package session

import "kulturkampf/internal/gametime"

// overallProgress blends the calendar baseline with the stateful adjustment
// from expiries and recoveries. Expired leads push the war's end closer;
// each recovery claws time back. Clamped to [0, 100].
func (s *Session) overallProgress() float64 {
	startDay := gametime.DayNumber(s.cfg.CampaignStart)
	endDay := gametime.DayNumber(s.cfg.CampaignEnd)
	span := endDay - startDay
	if span <= 0 {
		return 100
	}
	baseline := float64(s.clock.CurrentDay()-startDay) / float64(span) * 100
	p := baseline + s.progressAdjust
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (s *Session) recoveredCount() int {
	n := 0
	for _, a := range s.artworks {
		if a.Recovered() {
			n++
		}
	}
	return n
}
