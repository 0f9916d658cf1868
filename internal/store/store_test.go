package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"quiz_history", "llm_request_events", "schema_migrations"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.HistoryRepo(0).Save(ctx, HistoryItem{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	items, err := s.HistoryRepo(0).List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item after reopen, got %d", len(items))
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZDECK_DB", filepath.Join(dir, "custom", "q.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != filepath.Join(dir, "custom", "q.db") {
		t.Errorf("DefaultDBPath = %q", p)
	}

	t.Setenv("QUIZDECK_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != filepath.Join(dir, "quizdeck", "quizdeck.db") {
		t.Errorf("DefaultDBPath = %q", p)
	}
}
