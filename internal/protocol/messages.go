package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ClientID        string         `json:"client_id"`
	SessionParams   SessionParams  `json:"session_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type SessionParams struct {
	DayMs         int     `json:"day_ms"`
	CampaignStart string  `json:"campaign_start"` // YYYY-MM-DD
	CampaignEnd   string  `json:"campaign_end"`
	HomeBaseTop   float64 `json:"home_base_top"`
	HomeBaseLeft  float64 `json:"home_base_left"`
}

type CatalogDigests struct {
	ArtworksDigest string `json:"artworks_digest"`
	AgentsDigest   string `json:"agents_digest"`
	SkillsDigest   string `json:"skills_digest"`
}

// CATALOG (server -> client): one catalog payload per message.
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`   // "artworks", "agents", "skills"
	Digest          string      `json:"digest"` // sha256 hex
	Data            interface{} `json:"data"`
}

// STATE (server -> client): the full presentation contract, pushed after
// each retrieval tick. Presentation never mutates any of this; it issues
// CMD messages instead.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	Date      string `json:"date"` // YYYY-MM-DD
	DayNumber int    `json:"day_number"`
	Running   bool   `json:"running"`
	SpeedMs   int    `json:"speed_ms"`

	Leads    []LeadObs    `json:"leads"`
	Missions []MissionObs `json:"missions"`
	Tasks    []TaskObs    `json:"tasks"`
	Agents   []AgentObs   `json:"agents"`
	Skills   []SkillObs   `json:"skills"`
	Artworks []ArtworkObs `json:"artworks"`

	IntelligencePoints int     `json:"intelligence_points"`
	OverallProgress    float64 `json:"overall_progress"`
	RecoveredCount     int     `json:"recovered_count"`

	Events []Event `json:"events,omitempty"`
}

type LeadObs struct {
	ID          int     `json:"id"`
	Top         float64 `json:"top"`
	Left        float64 `json:"left"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ArtworkID   int     `json:"artwork_id,omitempty"`
}

type MissionObs struct {
	ID             int     `json:"id"`
	LeadID         int     `json:"lead_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Top            float64 `json:"top"`
	Left           float64 `json:"left"`
	ArtworkID      int     `json:"artwork_id,omitempty"`
	AcknowledgedAt string  `json:"acknowledged_at"` // in-game date YYYY-MM-DD
}

type TaskObs struct {
	ID          int     `json:"id"`
	MissionID   int     `json:"mission_id"`
	AgentID     int     `json:"agent_id"`
	ArtworkID   int     `json:"artwork_id"`
	Progress    float64 `json:"progress"`
	CurrentTop  float64 `json:"current_top"`
	CurrentLeft float64 `json:"current_left"`
	TargetTop   float64 `json:"target_top"`
	TargetLeft  float64 `json:"target_left"`
	Returning   bool    `json:"returning"`
	Done        bool    `json:"done"`
	Failed      bool    `json:"failed,omitempty"`
}

type AgentObs struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Codename       string `json:"codename,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Busy           bool   `json:"busy"`
}

type SkillObs struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"max_level"`
	Cost     int    `json:"cost"`
	Unlocked bool   `json:"unlocked"`
}

type ArtworkObs struct {
	ID       int `json:"id"`
	Progress int `json:"progress"` // 0 or 100
}

// Event is a loose server-to-client notification (action results,
// settlements, expiries). Kept schemaless like observations of record.
type Event map[string]interface{}

// CMD (client -> server)
type CmdMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	LeadID    int `json:"lead_id,omitempty"`
	MissionID int `json:"mission_id,omitempty"`
	SkillID   int `json:"skill_id,omitempty"`

	// Clock controls.
	SpeedMs int    `json:"speed_ms,omitempty"`
	Days    int    `json:"days,omitempty"`
	Date    string `json:"date,omitempty"` // YYYY-MM-DD
}

// Instant types carried by CMD.
const (
	InstCollectLead  = "COLLECT_LEAD"
	InstStartMission = "START_MISSION"
	InstAddAgent     = "ADD_AGENT"
	InstLevelUpSkill = "LEVEL_UP_SKILL"
	InstClockStart   = "CLOCK_START"
	InstClockStop    = "CLOCK_STOP"
	InstClockToggle  = "CLOCK_TOGGLE"
	InstClockSpeed   = "CLOCK_SET_SPEED"
	InstClockForward = "CLOCK_FAST_FORWARD"
	InstClockReset   = "CLOCK_RESET"
)
