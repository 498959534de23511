// Package store opens the snapshot store selected by a types.StoreConfig while
// keeping the driver implementations internal.
//
// Example:
//
//	s, err := store.Open(ctx, types.StoreConfig{
//	    Driver:  types.StoreSQLite,
//	    DataDir: ".catalogue-db",
//	})
//	defer s.Close()
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/internal/postgres"
	"github.com/mesh-intelligence/catalogue/internal/sqlite"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// Open validates cfg and opens the matching snapshot store. A nil logger
// disables store logging.
func Open(ctx context.Context, cfg types.StoreConfig, logger *zap.Logger) (types.SnapshotStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case types.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.DataDir, sqlite.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case types.StorePostgres:
		s, err := postgres.Open(ctx, cfg.DSN, postgres.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrDriverUnknown, cfg.Driver)
}
