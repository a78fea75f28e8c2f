package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"kulturkampf/internal/sim/session"
)

func TestLedgerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewCampaignLedger(dir)

	entries := []session.LedgerEntry{
		{Kind: "lead_spawned", LeadID: 1, ArtworkID: 4},
		{Kind: "lead_collected", LeadID: 1, MissionID: 1, ArtworkID: 4, Points: 10},
		{Kind: "artwork_recovered", MissionID: 1, TaskID: 1, AgentID: 2, ArtworkID: 4, Points: 25},
	}
	for _, e := range entries {
		if err := l.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "ledger", "ledger-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one ledger file, got %v (err %v)", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []session.LedgerEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e session.LedgerEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("entries = %d, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Kind != e.Kind || got[i].ArtworkID != e.ArtworkID || got[i].Points != e.Points {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}
