package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// snapshotHeader is the part of a stored snapshot the index columns need.
type snapshotHeader struct {
	ID        string            `json:"id"`
	Workspace string            `json:"workspace"`
	LoadedAt  time.Time         `json:"loadedAt"`
	Items     []json.RawMessage `json:"items"`
}

// loadJSONL inserts every snapshot of the mirror file into the database in
// one transaction: either all records load or the database stays empty.
// Malformed lines and records without a workspace are skipped; a later
// record of the same workspace replaces an earlier one.
func loadJSONL(ctx context.Context, db *sql.DB, path string, logger *zap.Logger) error {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	loaded := 0
	for _, rec := range records {
		var h snapshotHeader
		if err := json.Unmarshal(rec, &h); err != nil || h.Workspace == "" || h.ID == "" {
			skipped++
			continue
		}
		loaded++
		if _, err := tx.ExecContext(ctx, upsertSnapshot,
			h.Workspace, h.ID, h.LoadedAt.UTC().Format(time.RFC3339Nano), len(h.Items), string(rec)); err != nil {
			return fmt.Errorf("loading snapshot %s: %w", h.Workspace, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}

	if skipped > 0 {
		logger.Warn("skipped malformed snapshot records", zap.String("path", path), zap.Int("skipped", skipped))
	}
	logger.Debug("snapshots loaded", zap.String("path", path), zap.Int("records", loaded))
	return nil
}
