// Package storage keeps computed heatmap layouts so they can be fetched and
// re-rendered later by ID.
//
// The HTTP API saves every layout it computes and hands back the ID; clients
// then request renders of that layout in any format. Three backends
// implement [Store]:
//   - [MongoStore]: MongoDB collection, for multi-instance deployments
//   - [FileStore]: one JSON file per layout, for a single server
//   - [MemoryStore]: in-process map, for development and tests
//
// Lookups of unknown IDs fail with an error carrying
// [herrors.ErrCodeLayoutNotFound].
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Snapshot is a stored layout.
type Snapshot struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Layout    *heatmap.Layout `json:"layout"`
}

// Summary describes a snapshot without its cells.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Cells     int       `json:"cells"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Snapshot) summary() Summary {
	return Summary{ID: s.ID, Title: s.Layout.Title, Cells: len(s.Layout.Cells), CreatedAt: s.CreatedAt}
}

// Store is the interface for layout storage backends.
type Store interface {
	// Save stores l under a new ID and returns it.
	Save(ctx context.Context, l *heatmap.Layout) (string, error)

	// Get returns the snapshot with the given ID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns up to limit summaries, newest first. A limit of zero or
	// less uses DefaultListLimit.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes the snapshot with the given ID.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh snapshot ID.
func NewID() string {
	return uuid.NewString()
}

func notFound(id string) error {
	return herrors.New(herrors.ErrCodeLayoutNotFound, "layout %s not found", id)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
