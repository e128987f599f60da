package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/verigen/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Conformance(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) model.Store { return newTestStore(t) })
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "verigen.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Set(ctx, "apiKey_groq", "gsk-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.SaveResult(ctx, result("r1", time.Now())); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "apiKey_groq")
	if err != nil || !ok || v != "gsk-1" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
	if _, err := s.GetResult(ctx, "r1"); err != nil {
		t.Errorf("GetResult after reopen: %v", err)
	}
}

func TestSQLiteStore_PruneUsesCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Insert an "old" entry by writing directly with a past timestamp.
	_, err := s.db.Exec(
		"INSERT INTO results (id, module_code, testbench_code, description, provider, model, strategy, source, created_at) VALUES (?, '', '', '', '', '', '', 'generated', ?)",
		"old", time.Now().Add(-48*time.Hour).UnixNano(),
	)
	if err != nil {
		t.Fatalf("inserting old result: %v", err)
	}
	if err := s.SaveResult(ctx, result("fresh", time.Now())); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	n, err := s.PruneResults(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneResults: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
