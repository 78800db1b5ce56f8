package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// MemoryStore keeps snapshots in a map.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, l *heatmap.Layout) (string, error) {
	if l == nil {
		return "", herrors.New(herrors.ErrCodeInvalidInput, "layout is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewID()
	s.snapshots[id] = &Snapshot{ID: id, CreatedAt: s.now().UTC(), Layout: l}
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, notFound(id)
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap.summary())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out[:min(len(out), clampLimit(limit))], nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return notFound(id)
	}
	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
