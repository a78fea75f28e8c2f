// A scripted client that plays the campaign: starts the clock, collects
// every lead it sees, recruits an agent when affordable, and dispatches
// missions. Useful for exercising a running server end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"kulturkampf/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "client name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{conn: conn, log: logger}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME client_id=%s campaign=%s..%s", w.ClientID, w.SessionParams.CampaignStart, w.SessionParams.CampaignEnd)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.handleState(&st)
		}
	}
}

type bot struct {
	conn    *websocket.Conn
	log     *log.Logger
	started bool
	seq     int
}

func (b *bot) handleState(st *protocol.StateMsg) {
	var instants []protocol.InstantReq

	if !b.started {
		b.started = true
		instants = append(instants, b.instant(protocol.InstantReq{Type: protocol.InstClockStart}))
	}

	for _, l := range st.Leads {
		instants = append(instants, b.instant(protocol.InstantReq{Type: protocol.InstCollectLead, LeadID: l.ID}))
	}

	// Keep at least one agent on the payroll.
	if len(st.Agents) == 0 && st.IntelligencePoints >= 50 {
		instants = append(instants, b.instant(protocol.InstantReq{Type: protocol.InstAddAgent}))
	}

	// Dispatch any mission without a retrieval in flight, one per idle agent.
	inFlight := map[int]bool{}
	for _, t := range st.Tasks {
		if !t.Done {
			inFlight[t.MissionID] = true
		}
	}
	idle := 0
	for _, a := range st.Agents {
		if !a.Busy {
			idle++
		}
	}
	for _, m := range st.Missions {
		if idle == 0 {
			break
		}
		if !inFlight[m.ID] {
			instants = append(instants, b.instant(protocol.InstantReq{Type: protocol.InstStartMission, MissionID: m.ID}))
			idle--
		}
	}

	for _, e := range st.Events {
		if e["type"] == "ARTWORK_RECOVERED" {
			b.log.Printf("recovered artwork %v (campaign progress %.1f%%)", e["artwork_id"], st.OverallProgress)
		}
	}

	if len(instants) == 0 {
		return
	}
	cmd := protocol.CmdMsg{
		Type:            protocol.TypeCmd,
		ProtocolVersion: protocol.Version,
		Instants:        instants,
	}
	_ = b.conn.WriteJSON(cmd)
}

func (b *bot) instant(req protocol.InstantReq) protocol.InstantReq {
	b.seq++
	req.ID = fmt.Sprintf("i%d", b.seq)
	return req
}
