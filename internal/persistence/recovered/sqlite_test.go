package recovered

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestLoadEmptyStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ids, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("fresh store should be empty, got %v", ids)
	}
}

func TestSaveLoadAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save([]int{3, 1, 7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save([]int{3, 1, 7, 9}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	ids, err := s2.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 4 || ids[0] != 3 || ids[3] != 9 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestCorruptValueReadsAsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)`, recoveredKey, "{not json"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}
	ids, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("corrupt value should read as empty, got %v", ids)
	}

	// The load itself must reset the corrupt row, not wait for a save.
	var v string
	if err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, recoveredKey).Scan(&v); err != sql.ErrNoRows {
		t.Fatalf("corrupt row should be deleted on load, got %q (err %v)", v, err)
	}

	if err := s.Save([]int{2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	ids, err = s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("ids = %v", ids)
	}
}
