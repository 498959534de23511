package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a loaded workspace catalog together with the mappings needed to
// resolve availability against it.
type Snapshot struct {
	ID        string
	Workspace string
	LoadedAt  time.Time
	Options   CatalogOptions
	Groups    []CatalogGroup
	Items     []CatalogItem
	Mappings  Mappings
}

// SnapshotInfo summarises a stored snapshot.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Workspace string    `json:"workspace"`
	LoadedAt  time.Time `json:"loaded_at"`
	ItemCount int       `json:"item_count"`
}

// Info summarises s.
func (s Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{ID: s.ID, Workspace: s.Workspace, LoadedAt: s.LoadedAt, ItemCount: len(s.Items)}
}

// Stamped returns s with an empty ID replaced by a new UUID v7 and a zero
// LoadedAt replaced by now.
func (s Snapshot) Stamped(now time.Time) Snapshot {
	if s.ID == "" {
		s.ID = NewSnapshotID()
	}
	if s.LoadedAt.IsZero() {
		s.LoadedAt = now.UTC()
	}
	return s
}

// NewSnapshotID generates a time-ordered snapshot id.
func NewSnapshotID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SnapshotStore persists one catalog snapshot per workspace.
type SnapshotStore interface {
	// Save stores s, replacing any snapshot of the same workspace. An empty
	// ID is replaced by a generated one and a zero LoadedAt by the current
	// time. Returns the summary of the stored snapshot.
	Save(ctx context.Context, s Snapshot) (SnapshotInfo, error)

	// Load returns the snapshot of workspace.
	// Returns ErrSnapshotNotFound if none is stored.
	Load(ctx context.Context, workspace string) (Snapshot, error)

	// List summarises every stored snapshot ordered by workspace.
	List(ctx context.Context) ([]SnapshotInfo, error)

	// Delete removes the snapshot of workspace.
	// Returns ErrSnapshotNotFound if none is stored.
	Delete(ctx context.Context, workspace string) error

	// Close releases the store. Idempotent. After Close every operation
	// returns ErrStoreClosed.
	Close() error
}
