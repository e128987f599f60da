package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/verigen/internal/model"
)

func result(id string, createdAt time.Time) model.Result {
	return model.Result{
		ID:            id,
		ModuleCode:    "module " + id + "; endmodule",
		TestbenchCode: "module " + id + "_tb; endmodule",
		Description:   "Generated Verilog code for: " + id,
		Provider:      "groq",
		Model:         "llama3-70b-8192",
		Strategy:      "markers",
		Source:        model.SourceGenerated,
		CreatedAt:     createdAt.UTC(),
	}
}

// runStoreSuite checks the behaviour every model.Store implementation shares.
func runStoreSuite(t *testing.T, open func(t *testing.T) model.Store) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		s := open(t)
		_, ok, err := s.Get(ctx, "missing")
		if err != nil || ok {
			t.Errorf("Get(missing) ok=%v err=%v, want false, nil", ok, err)
		}
	})

	t.Run("set get overwrite delete", func(t *testing.T) {
		s := open(t)
		if err := s.Set(ctx, "k", "v1"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Set(ctx, "k", "v2"); err != nil {
			t.Fatalf("Set overwrite: %v", err)
		}
		v, ok, err := s.Get(ctx, "k")
		if err != nil || !ok || v != "v2" {
			t.Fatalf("Get = %q, %v, %v; want v2", v, ok, err)
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := s.Get(ctx, "k"); ok {
			t.Error("key still present after Delete")
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Errorf("Delete of missing key: %v", err)
		}
	})

	t.Run("keys by prefix", func(t *testing.T) {
		s := open(t)
		for _, k := range []string{"apiKey_openai", "apiKey_groq", "verilogFormData", "apiKey*odd"} {
			if err := s.Set(ctx, k, "x"); err != nil {
				t.Fatalf("Set %s: %v", k, err)
			}
		}
		got, err := s.Keys(ctx, "apiKey_")
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		want := []string{"apiKey_groq", "apiKey_openai"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("results round trip and ordering", func(t *testing.T) {
		s := open(t)
		base := time.Now().Truncate(time.Millisecond)
		for i, id := range []string{"a", "b", "c"} {
			if err := s.SaveResult(ctx, result(id, base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Fatalf("SaveResult %s: %v", id, err)
			}
		}

		got, err := s.GetResult(ctx, "b")
		if err != nil {
			t.Fatalf("GetResult: %v", err)
		}
		if diff := cmp.Diff(result("b", base.Add(time.Second)), got); diff != "" {
			t.Errorf("GetResult mismatch (-want +got):\n%s", diff)
		}

		latest, err := s.LatestResult(ctx)
		if err != nil || latest.ID != "c" {
			t.Errorf("LatestResult = %q, %v; want c", latest.ID, err)
		}

		list, err := s.ListResults(ctx, 2)
		if err != nil {
			t.Fatalf("ListResults: %v", err)
		}
		var ids []string
		for _, r := range list {
			ids = append(ids, r.ID)
		}
		if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
			t.Errorf("ListResults ids mismatch (-want +got):\n%s", diff)
		}

		all, _ := s.ListResults(ctx, 0)
		if len(all) != 3 {
			t.Errorf("ListResults(0) returned %d, want 3", len(all))
		}
	})

	t.Run("missing result is ErrNotFound", func(t *testing.T) {
		s := open(t)
		if _, err := s.GetResult(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("GetResult err = %v, want ErrNotFound", err)
		}
		if _, err := s.LatestResult(ctx); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("LatestResult err = %v, want ErrNotFound", err)
		}
	})

	t.Run("prune keeps fresh results", func(t *testing.T) {
		s := open(t)
		now := time.Now()
		if err := s.SaveResult(ctx, result("old", now.Add(-72*time.Hour))); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
		if err := s.SaveResult(ctx, result("new", now)); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}

		n, err := s.PruneResults(ctx, 24*time.Hour)
		if err != nil {
			t.Fatalf("PruneResults: %v", err)
		}
		if n != 1 {
			t.Errorf("pruned %d, want 1", n)
		}
		if _, err := s.GetResult(ctx, "old"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("old result survived prune: %v", err)
		}
		if _, err := s.GetResult(ctx, "new"); err != nil {
			t.Errorf("fresh result removed: %v", err)
		}
	})
}

func TestMemoryStore_Conformance(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) model.Store { return NewMemoryStore() })
}

func TestRedisStore_Conformance(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	runStoreSuite(t, func(t *testing.T) model.Store {
		prefix := "verigen-test:" + t.Name() + ":" + time.Now().Format("150405.000000") + ":"
		s, err := NewRedisStore(context.Background(), url, prefix)
		if err != nil {
			t.Fatalf("NewRedisStore: %v", err)
		}
		t.Cleanup(func() {
			ctx := context.Background()
			iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
			for iter.Next(ctx) {
				s.client.Del(ctx, iter.Val())
			}
			s.Close()
		})
		return s
	})
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?[c]"); got != `a\*b\?\[c\]` {
		t.Errorf("escapeGlob = %q", got)
	}
}
