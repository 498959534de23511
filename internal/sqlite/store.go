// Package sqlite implements the local snapshot store. The JSONL mirror in the
// data directory is the source of truth; SQLite is rebuilt from it on open and
// serves every query.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

const (
	upsertSnapshot = `INSERT INTO snapshots (workspace, snapshot_id, loaded_at, item_count, payload)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(workspace) DO UPDATE SET
    snapshot_id = excluded.snapshot_id,
    loaded_at = excluded.loaded_at,
    item_count = excluded.item_count,
    payload = excluded.payload`

	selectPayload  = `SELECT payload FROM snapshots WHERE workspace = ?`
	selectPayloads = `SELECT payload FROM snapshots ORDER BY workspace`
	selectInfos    = `SELECT snapshot_id, workspace, loaded_at, item_count FROM snapshots ORDER BY workspace`
	deleteSnapshot = `DELETE FROM snapshots WHERE workspace = ?`
)

// Store implements types.SnapshotStore on SQLite with a JSONL mirror.
type Store struct {
	mu      sync.RWMutex
	closed  bool
	db      *sql.DB
	dataDir string
	logger  *zap.Logger
}

var _ types.SnapshotStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens the store in dataDir, creating the directory and an empty mirror
// file when needed. The database file is recreated from the mirror.
func Open(ctx context.Context, dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	s := &Store{dataDir: dataDir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	mirror := s.mirrorPath()
	if err := initJSONL(mirror); err != nil {
		db.Close()
		return nil, err
	}
	if err := loadJSONL(ctx, db, mirror, s.logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("load JSONL: %w", err)
	}

	s.db = db
	return s, nil
}

func (s *Store) mirrorPath() string {
	return filepath.Join(s.dataDir, snapshotsFile)
}

// Save stores snap and rewrites the mirror file.
func (s *Store) Save(ctx context.Context, snap types.Snapshot) (types.SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.SnapshotInfo{}, types.ErrStoreClosed
	}
	if snap.Workspace == "" {
		return types.SnapshotInfo{}, types.ErrWorkspaceEmpty
	}
	snap = snap.Stamped(time.Now())

	payload, err := json.Marshal(snap)
	if err != nil {
		return types.SnapshotInfo{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSnapshot,
		snap.Workspace, snap.ID, snap.LoadedAt.UTC().Format(time.RFC3339Nano), len(snap.Items), string(payload)); err != nil {
		return types.SnapshotInfo{}, fmt.Errorf("saving snapshot %s: %w", snap.Workspace, err)
	}
	if err := s.persistLocked(ctx); err != nil {
		return types.SnapshotInfo{}, err
	}

	s.logger.Debug("snapshot saved",
		zap.String("workspace", snap.Workspace),
		zap.String("id", snap.ID),
		zap.Int("items", len(snap.Items)))
	return snap.Info(), nil
}

// Load returns the snapshot of workspace.
func (s *Store) Load(ctx context.Context, workspace string) (types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.Snapshot{}, types.ErrStoreClosed
	}

	var payload string
	err := s.db.QueryRowContext(ctx, selectPayload, workspace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, workspace)
	}
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("loading snapshot %s: %w", workspace, err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", workspace, err)
	}
	return snap, nil
}

// List summarises every stored snapshot ordered by workspace.
func (s *Store) List(ctx context.Context) ([]types.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, selectInfos)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.SnapshotInfo
	for rows.Next() {
		var (
			info     types.SnapshotInfo
			loadedAt string
		)
		if err := rows.Scan(&info.ID, &info.Workspace, &loadedAt, &info.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if info.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
			return nil, fmt.Errorf("parsing loaded_at of %s: %w", info.Workspace, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the snapshot of workspace and rewrites the mirror file.
func (s *Store) Delete(ctx context.Context, workspace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, deleteSnapshot, workspace)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", workspace, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, workspace)
	}
	return s.persistLocked(ctx)
}

// Close closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// persistLocked rewrites the mirror file from the database.
// The caller must hold s.mu for writing.
func (s *Store) persistLocked(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, selectPayloads)
	if err != nil {
		return fmt.Errorf("reading snapshots for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scanning snapshot for JSONL: %w", err)
		}
		records = append(records, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := writeJSONL(s.mirrorPath(), records); err != nil {
		return fmt.Errorf("persisting %s: %w", snapshotsFile, err)
	}
	return nil
}
