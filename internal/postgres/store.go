// Package postgres implements a shared snapshot store on Postgres through the
// pgx database/sql driver. Snapshots are kept as JSONB, one row per workspace.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

var _ types.SnapshotStore = (*Store)(nil)

const defaultDriver = "pgx"

const (
	createTable = `CREATE TABLE IF NOT EXISTS catalogue_snapshots (
		workspace TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL UNIQUE,
		loaded_at TIMESTAMPTZ NOT NULL,
		item_count INTEGER NOT NULL,
		payload JSONB NOT NULL
	)`

	upsertSnapshot = `INSERT INTO catalogue_snapshots (workspace, snapshot_id, loaded_at, item_count, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace) DO UPDATE SET
			snapshot_id = EXCLUDED.snapshot_id,
			loaded_at = EXCLUDED.loaded_at,
			item_count = EXCLUDED.item_count,
			payload = EXCLUDED.payload`

	selectPayload  = `SELECT payload FROM catalogue_snapshots WHERE workspace = $1`
	selectInfos    = `SELECT snapshot_id, workspace, loaded_at, item_count FROM catalogue_snapshots ORDER BY workspace`
	deleteSnapshot = `DELETE FROM catalogue_snapshots WHERE workspace = $1`
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store implements types.SnapshotStore on Postgres.
type Store struct {
	mu     sync.RWMutex
	closed bool
	db     *sql.DB
	logger *zap.Logger
}

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

// Open connects to dsn, verifies the connection and ensures the snapshot
// table exists.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, types.ErrDSNEmpty
	}
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	s.db = db
	return s, nil
}

// Save upserts snap.
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
		return types.SnapshotInfo{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSnapshot,
		snap.Workspace, snap.ID, snap.LoadedAt, len(snap.Items), payload); err != nil {
		return types.SnapshotInfo{}, fmt.Errorf("upsert snapshot %s: %w", snap.Workspace, err)
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

	var payload []byte
	err := s.db.QueryRowContext(ctx, selectPayload, workspace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, workspace)
	}
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("select snapshot %s: %w", workspace, err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", workspace, err)
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
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.SnapshotInfo
	for rows.Next() {
		var info types.SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Workspace, &info.LoadedAt, &info.ItemCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot of workspace.
func (s *Store) Delete(ctx context.Context, workspace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, deleteSnapshot, workspace)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", workspace, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", workspace, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, workspace)
	}
	return nil
}

// Close closes the connection pool. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
