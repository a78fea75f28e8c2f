package session

import (
	"math"
	"time"

	"kulturkampf/internal/sim/catalogs"
)

// Pos is a map-relative position in percentage space (0-100 on both axes),
// matching how the presentation layer anchors markers.
type Pos struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

func dist(a, b Pos) float64 {
	dt := a.Top - b.Top
	dl := a.Left - b.Left
	return math.Sqrt(dt*dt + dl*dl)
}

// lerp interpolates a->b at t in [0,1].
func lerp(a, b Pos, t float64) Pos {
	return Pos{
		Top:  a.Top + (b.Top-a.Top)*t,
		Left: a.Left + (b.Left-a.Left)*t,
	}
}

// Lead is a spawned map event tied to an undiscovered artwork. Its TTL is
// measured in accumulated clock-running time, so a paused campaign never
// expires leads.
type Lead struct {
	ID           int
	Pos          Pos
	Title        string
	Description  string
	ArtworkID    int
	CreatedRunMs int64
}

// Mission is a lead the player has acknowledged. It survives failed
// retrievals and is removed only on success.
type Mission struct {
	ID             int
	LeadID         int
	Title          string
	Description    string
	Pos            Pos
	ArtworkID      int
	AcknowledgedAt time.Time // in-game date
}

// RetrievalTask simulates one agent executing a mission. The failure
// outcome is fixed at dispatch; everything after is a deterministic
// animation of that roll.
type RetrievalTask struct {
	ID        int
	MissionID int
	AgentID   int
	ArtworkID int

	StartTime time.Time
	Duration  time.Duration
	Progress  float64
	Current   Pos
	Target    Pos

	Failed    bool
	Returning bool

	// Pause bookkeeping: paused wall-clock time is excluded from elapsed
	// so resuming never jumps the task forward.
	PausedAt    time.Time
	PausedAccum time.Duration

	// SettledAt guards the completion effects: zero until the 100% edge
	// fires, then set exactly once.
	SettledAt time.Time
}

func (t *RetrievalTask) settled() bool { return !t.SettledAt.IsZero() }

// ArtworkState pairs an immutable catalog entry with the one field the
// session owns: binary recovery progress (0 or 100).
type ArtworkState struct {
	Def      catalogs.ArtworkDef
	Progress int
}

func (a *ArtworkState) Recovered() bool { return a.Progress >= 100 }

// AgentState is a recruited agent. Availability is derived from the live
// task list, not stored here.
type AgentState struct {
	Def catalogs.AgentDef
}

type SkillState struct {
	Def   catalogs.SkillDef
	Level int
}

func (s *SkillState) Unlocked() bool { return s.Level > 0 }
