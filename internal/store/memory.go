package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/verigen/internal/model"
)

// MemoryStore keeps everything in process memory. It backs --no-store runs,
// where nothing should touch disk, and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	kv      map[string]string
	results []model.Result // insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kv: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) SaveResult(_ context.Context, r model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].ID == r.ID {
			s.results = append(s.results[:i], s.results[i+1:]...)
			break
		}
	}
	s.results = append(s.results, r)
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, id string) (model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Result{}, fmt.Errorf("result %s: %w", id, model.ErrNotFound)
}

func (s *MemoryStore) LatestResult(ctx context.Context) (model.Result, error) {
	results, _ := s.ListResults(ctx, 1)
	if len(results) == 0 {
		return model.Result{}, fmt.Errorf("latest result: %w", model.ErrNotFound)
	}
	return results[0], nil
}

// ListResults returns results newest first; ties keep the later insert first.
func (s *MemoryStore) ListResults(_ context.Context, limit int) ([]model.Result, error) {
	s.mu.RLock()
	out := make([]model.Result, 0, len(s.results))
	for i := len(s.results) - 1; i >= 0; i-- {
		out = append(out, s.results[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) PruneResults(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	kept := s.results[:0]
	var removed int64
	for _, r := range s.results {
		if r.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.results = kept
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }
