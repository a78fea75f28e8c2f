package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kulturkampf/internal/protocol"
	"kulturkampf/internal/sim/catalogs"
	"kulturkampf/internal/sim/session"
)

func testCatalogs() *catalogs.Catalogs {
	c := &catalogs.Catalogs{}
	c.Artworks.Defs = []catalogs.ArtworkDef{
		{ID: 1, Name: "Lady with an Ermine", Artist: "Leonardo da Vinci", Location: "Krakow"},
		{ID: 2, Name: "Portrait of a Young Man", Artist: "Raphael", Location: "Krakow"},
	}
	c.Artworks.ByID = map[int]catalogs.ArtworkDef{1: c.Artworks.Defs[0], 2: c.Artworks.Defs[1]}
	c.Artworks.Digest = "d-artworks"
	c.Agents.Defs = []catalogs.AgentDef{{ID: 1, Name: "Jan Kowalski"}}
	c.Agents.ByID = map[int]catalogs.AgentDef{1: c.Agents.Defs[0]}
	c.Agents.Digest = "d-agents"
	c.Skills.Defs = []catalogs.SkillDef{{ID: 1, Name: "Tradecraft", MaxLevel: 3, Cost: 20, EffectType: catalogs.EffectFailureReduction, MagnitudePerLevel: 0.05}}
	c.Skills.ByID = map[int]catalogs.SkillDef{1: c.Skills.Defs[0]}
	c.Skills.Digest = "d-skills"
	return c
}

func dialTestServer(t *testing.T) (*websocket.Conn, *session.Session, func()) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	sess := session.New(session.Config{Seed: 7}, testCatalogs(), quiet)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = sess.Run(ctx) }()

	srv := httptest.NewServer(NewServer(sess, quiet).Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	cleanup := func() {
		conn.Close()
		srv.Close()
		cancel()
		sess.Stop()
	}
	return conn, sess, cleanup
}

func readTyped(t *testing.T, conn *websocket.Conn, want string) []byte {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == want {
			return msg
		}
	}
	t.Fatalf("no %s message within deadline", want)
	return nil
}

func TestHandshakeDeliversWelcomeAndCatalogs(t *testing.T) {
	conn, _, cleanup := dialTestServer(t)
	defer cleanup()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	raw := readTyped(t, conn, protocol.TypeWelcome)
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.ClientID == "" {
		t.Fatalf("empty client id")
	}
	if welcome.SessionParams.CampaignStart != "1939-09-01" {
		t.Fatalf("campaign start = %s", welcome.SessionParams.CampaignStart)
	}
	if welcome.Catalogs.ArtworksDigest != "d-artworks" {
		t.Fatalf("digest = %s", welcome.Catalogs.ArtworksDigest)
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		raw := readTyped(t, conn, protocol.TypeCatalog)
		var cat protocol.CatalogMsg
		if err := json.Unmarshal(raw, &cat); err != nil {
			t.Fatalf("catalog: %v", err)
		}
		seen[cat.Name] = true
	}
	for _, name := range []string{"artworks", "agents", "skills"} {
		if !seen[name] {
			t.Fatalf("missing catalog %q", name)
		}
	}
}

func TestCmdRoundTrip(t *testing.T) {
	conn, _, cleanup := dialTestServer(t)
	defer cleanup()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	readTyped(t, conn, protocol.TypeWelcome)

	cmd := protocol.CmdMsg{
		Type:            protocol.TypeCmd,
		ProtocolVersion: protocol.Version,
		Instants:        []protocol.InstantReq{{ID: "i1", Type: protocol.InstClockStart}},
	}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write cmd: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		raw := readTyped(t, conn, protocol.TypeState)
		var st protocol.StateMsg
		if err := json.Unmarshal(raw, &st); err != nil {
			t.Fatalf("state: %v", err)
		}
		if st.Running {
			if len(st.Leads) != 1 {
				t.Fatalf("expected bootstrap lead in state, got %d", len(st.Leads))
			}
			return
		}
	}
	t.Fatalf("clock never reported running")
}

func TestRejectsWrongProtocolVersion(t *testing.T) {
	conn, _, cleanup := dialTestServer(t)
	defer cleanup()

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.0", ClientName: "test"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close on bad protocol version")
	}
}
