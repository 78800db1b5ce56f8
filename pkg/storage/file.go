package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// FileStore keeps one JSON file per snapshot in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a file store rooted at baseDir, creating the
// directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, herrors.New(herrors.ErrCodeInvalidPath, "store directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) snapshotPath(id string) (string, error) {
	if err := herrors.ValidateLayoutID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Save(ctx context.Context, l *heatmap.Layout) (string, error) {
	if l == nil {
		return "", herrors.New(herrors.ErrCodeInvalidInput, "layout is nil")
	}
	snap := Snapshot{ID: NewID(), CreatedAt: s.now().UTC(), Layout: l}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.snapshotPath(snap.ID)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	return snap.ID, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	path, err := s.snapshotPath(id)
	if err != nil {
		return nil, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readSnapshot(path, id)
}

func readSnapshot(path, id string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", id, err)
	}
	if snap.Layout == nil {
		return nil, fmt.Errorf("parse snapshot %s: missing layout", id)
	}
	return &snap, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	out := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		snap, err := readSnapshot(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			continue
		}
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

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.snapshotPath(id)
	if err != nil {
		return notFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
