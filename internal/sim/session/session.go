// Package session implements the single-goroutine campaign engine: the
// simulated calendar, lead spawning, missions, retrieval simulation and the
// intelligence economy. All state is owned by the Run loop; clients talk to
// it over channels.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"kulturkampf/internal/gametime"
	"kulturkampf/internal/protocol"
	"kulturkampf/internal/sim/catalogs"
)

// RecoveredStore persists the set of recovered artwork ids across restarts.
// Implementations are best-effort; the session logs and continues on error.
type RecoveredStore interface {
	Load() ([]int, error)
	Save(ids []int) error
}

// LedgerEntry is one append-only campaign event for the on-disk ledger.
type LedgerEntry struct {
	Wall      time.Time `json:"wall"`
	Date      string    `json:"date"` // in-game YYYY-MM-DD
	Kind      string    `json:"kind"`
	LeadID    int       `json:"lead_id,omitempty"`
	MissionID int       `json:"mission_id,omitempty"`
	TaskID    int       `json:"task_id,omitempty"`
	AgentID   int       `json:"agent_id,omitempty"`
	ArtworkID int       `json:"artwork_id,omitempty"`
	SkillID   int       `json:"skill_id,omitempty"`
	Points    int       `json:"points,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
}

// Ledger receives campaign events. Implementations must be safe to call
// from the session goroutine only.
type Ledger interface {
	Append(e LedgerEntry) error
}

// JoinRequest asks the session to register a client. Resp receives the
// welcome payload; Out receives marshaled server messages afterwards.
type JoinRequest struct {
	ClientName string
	Out        chan []byte
	Resp       chan JoinResponse
}

type JoinResponse struct {
	ClientID string
	Welcome  protocol.WelcomeMsg
	Catalogs []protocol.CatalogMsg
}

type client struct {
	id  string
	out chan []byte
}

type cmdEnvelope struct {
	clientID string
	msg      protocol.CmdMsg
}

// Session owns the full campaign state. Construct with New, then drive with
// Run; every other exported method is channel-plumbing safe for any
// goroutine.
type Session struct {
	cfg  Config
	cats *catalogs.Catalogs
	lg   *log.Logger
	rng  *rand.Rand

	clock *gametime.Clock

	leads    []*Lead
	missions []*Mission
	tasks    []*RetrievalTask
	artworks map[int]*ArtworkState
	agents   []*AgentState
	skills   map[int]*SkillState

	// collectedLeads remembers every lead id ever consumed so a repeat
	// collect stays a no-op after the mission itself is gone.
	collectedLeads map[int]struct{}

	points         int
	progressAdjust float64

	// runningMs accumulates wall time spent with the clock running; lead
	// TTLs are measured against it so pauses freeze expiry.
	runningMs    int64
	lastTick     time.Time
	bootstrapped bool

	nextLeadID    int
	nextMissionID int
	nextTaskID    int

	spawnSchedID string

	events []protocol.Event

	store  RecoveredStore
	ledger Ledger

	clients      map[string]*client
	nextClientID int

	joinCh  chan JoinRequest
	leaveCh chan string
	inbox   chan cmdEnvelope
	stopCh  chan struct{}

	metrics atomic.Value // Metrics
}

// Metrics is a read-only snapshot for the /metrics endpoint, published from
// the loop goroutine and safe to read from any other.
type Metrics struct {
	Day       int
	Running   bool
	Clients   int
	Leads     int
	Missions  int
	Tasks     int
	Recovered int
	Points    int
}

func (s *Session) Metrics() Metrics {
	m, _ := s.metrics.Load().(Metrics)
	return m
}

func (s *Session) publishMetrics() {
	s.metrics.Store(Metrics{
		Day:       s.clock.CurrentDay() - gametime.DayNumber(s.cfg.CampaignStart),
		Running:   s.clock.Running(),
		Clients:   len(s.clients),
		Leads:     len(s.leads),
		Missions:  len(s.missions),
		Tasks:     len(s.tasks),
		Recovered: s.recoveredCount(),
		Points:    s.points,
	})
}

func New(cfg Config, cats *catalogs.Catalogs, lg *log.Logger) *Session {
	cfg.applyDefaults()
	if lg == nil {
		lg = log.New(log.Writer(), "[session] ", log.LstdFlags|log.Lmsgprefix)
	}
	s := &Session{
		cfg:      cfg,
		cats:     cats,
		lg:       lg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		clock:    gametime.New(cfg.CampaignStart),
		artworks: make(map[int]*ArtworkState),
		skills:   make(map[int]*SkillState),

		collectedLeads: make(map[int]struct{}),

		points:  cfg.StartingPoints,
		clients: make(map[string]*client),
		joinCh:  make(chan JoinRequest),
		leaveCh: make(chan string),
		inbox:   make(chan cmdEnvelope, 64),
		stopCh:  make(chan struct{}),
	}
	s.clock.SetSpeed(cfg.DayMs)
	for _, a := range cats.Artworks.Defs {
		s.artworks[a.ID] = &ArtworkState{Def: a}
	}
	for _, sk := range cats.Skills.Defs {
		s.skills[sk.ID] = &SkillState{Def: sk}
	}
	s.spawnSchedID = s.clock.ScheduleEvery(s.spawnInterval(), func() { s.spawnLead() })
	return s
}

// SetRecoveredStore wires the persistence layer and replays previously
// recovered artworks into the session. Call before Run.
func (s *Session) SetRecoveredStore(store RecoveredStore) {
	s.store = store
	ids, err := store.Load()
	if err != nil {
		s.lg.Printf("recovered store load failed, starting clean: %v", err)
		return
	}
	for _, id := range ids {
		if a, ok := s.artworks[id]; ok {
			a.Progress = 100
		}
	}
}

// SetLedger wires the append-only campaign ledger. Call before Run.
func (s *Session) SetLedger(l Ledger) { s.ledger = l }

// Join registers a client and returns its welcome payload.
func (s *Session) Join(name string, out chan []byte) (JoinResponse, error) {
	req := JoinRequest{ClientName: name, Out: out, Resp: make(chan JoinResponse, 1)}
	select {
	case s.joinCh <- req:
	case <-s.stopCh:
		return JoinResponse{}, fmt.Errorf("session stopped")
	}
	select {
	case resp := <-req.Resp:
		return resp, nil
	case <-s.stopCh:
		return JoinResponse{}, fmt.Errorf("session stopped")
	}
}

// Leave unregisters a client. Safe on unknown ids.
func (s *Session) Leave(clientID string) {
	select {
	case s.leaveCh <- clientID:
	case <-s.stopCh:
	}
}

// Submit queues a CMD for the session loop. Drops when the loop is gone.
func (s *Session) Submit(clientID string, msg protocol.CmdMsg) {
	select {
	case s.inbox <- cmdEnvelope{clientID: clientID, msg: msg}:
	case <-s.stopCh:
	}
}

// Stop terminates Run. Idempotent.
func (s *Session) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// Run drives the campaign until ctx is done or Stop is called. Three
// cadences share one select: the day ticker (nil while paused, rebuilt on
// speed changes), the retrieval progress tick, and the lead expiry sweep.
func (s *Session) Run(ctx context.Context) error {
	progress := time.NewTicker(s.cfg.ProgressTick)
	defer progress.Stop()
	sweep := time.NewTicker(s.cfg.SweepTick)
	defer sweep.Stop()

	var dayTicker *time.Ticker
	var dayCh <-chan time.Time
	daySpeed := 0
	syncDayTicker := func() {
		want := 0
		if s.clock.Running() {
			want = s.clock.SpeedMs()
		}
		if want == daySpeed {
			return
		}
		if dayTicker != nil {
			dayTicker.Stop()
			dayTicker = nil
			dayCh = nil
		}
		if want > 0 {
			dayTicker = time.NewTicker(time.Duration(want) * time.Millisecond)
			dayCh = dayTicker.C
		}
		daySpeed = want
	}
	defer func() {
		if dayTicker != nil {
			dayTicker.Stop()
		}
	}()

	s.lastTick = time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case req := <-s.joinCh:
			s.handleJoin(req)
		case id := <-s.leaveCh:
			s.handleLeave(id)
		case env := <-s.inbox:
			s.applyCmd(env, time.Now())
			syncDayTicker()
			s.broadcastState()
		case <-dayCh:
			if s.clock.Running() {
				s.tickDay()
			}
		case now := <-sweep.C:
			s.sweepLeads(now)
		case now := <-progress.C:
			s.tickRetrieval(now)
			s.publishMetrics()
			s.broadcastState()
		}
	}
}

// tickDay advances the calendar one day and runs due schedule callbacks.
// Each callback is isolated so one panic cannot take down the loop.
func (s *Session) tickDay() {
	due := s.clock.Tick()
	s.invoke(due)
}

func (s *Session) invoke(cbs []func()) {
	for _, cb := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.lg.Printf("schedule callback panic: %v", r)
				}
			}()
			cb()
		}()
	}
}

func (s *Session) handleJoin(req JoinRequest) {
	s.nextClientID++
	id := fmt.Sprintf("C%d", s.nextClientID)
	s.clients[id] = &client{id: id, out: req.Out}
	req.Resp <- JoinResponse{
		ClientID: id,
		Welcome:  s.welcome(id),
		Catalogs: s.catalogMsgs(),
	}
	s.sendState(s.clients[id])
}

func (s *Session) handleLeave(id string) {
	delete(s.clients, id)
}

func (s *Session) welcome(clientID string) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ClientID:        clientID,
		SessionParams: protocol.SessionParams{
			DayMs:         s.clock.SpeedMs(),
			CampaignStart: s.cfg.CampaignStart.Format("2006-01-02"),
			CampaignEnd:   s.cfg.CampaignEnd.Format("2006-01-02"),
			HomeBaseTop:   s.cfg.HomeBase.Top,
			HomeBaseLeft:  s.cfg.HomeBase.Left,
		},
		Catalogs: protocol.CatalogDigests{
			ArtworksDigest: s.cats.Artworks.Digest,
			AgentsDigest:   s.cats.Agents.Digest,
			SkillsDigest:   s.cats.Skills.Digest,
		},
	}
}

func (s *Session) catalogMsgs() []protocol.CatalogMsg {
	return []protocol.CatalogMsg{
		{Type: protocol.TypeCatalog, ProtocolVersion: protocol.Version, Name: "artworks", Digest: s.cats.Artworks.Digest, Data: s.cats.Artworks.Defs},
		{Type: protocol.TypeCatalog, ProtocolVersion: protocol.Version, Name: "agents", Digest: s.cats.Agents.Digest, Data: s.cats.Agents.Defs},
		{Type: protocol.TypeCatalog, ProtocolVersion: protocol.Version, Name: "skills", Digest: s.cats.Skills.Digest, Data: s.cats.Skills.Defs},
	}
}

func (s *Session) broadcastState() {
	if len(s.clients) == 0 {
		s.events = nil
		return
	}
	msg := s.stateMsg()
	raw, err := json.Marshal(msg)
	if err != nil {
		s.lg.Printf("marshal state: %v", err)
		return
	}
	for _, c := range s.clients {
		sendLatest(c.out, raw)
	}
}

func (s *Session) sendState(c *client) {
	raw, err := json.Marshal(s.stateMsg())
	if err != nil {
		s.lg.Printf("marshal state: %v", err)
		return
	}
	sendLatest(c.out, raw)
}

// sendLatest drops the oldest queued frame when the client is slow; a stale
// STATE is worthless once a newer one exists.
func sendLatest(ch chan []byte, raw []byte) {
	for {
		select {
		case ch <- raw:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Session) pushEvent(e protocol.Event) {
	s.events = append(s.events, e)
}

func (s *Session) ledgerAppend(e LedgerEntry) {
	if s.ledger == nil {
		return
	}
	e.Wall = time.Now()
	e.Date = s.clock.Now().Format("2006-01-02")
	if err := s.ledger.Append(e); err != nil {
		s.lg.Printf("ledger append: %v", err)
	}
}
