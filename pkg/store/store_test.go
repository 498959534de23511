package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

func TestOpenValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.StoreConfig
		want error
	}{
		{name: "no driver", cfg: types.StoreConfig{}, want: types.ErrDriverEmpty},
		{name: "unknown driver", cfg: types.StoreConfig{Driver: "bolt"}, want: types.ErrDriverUnknown},
		{name: "postgres without dsn", cfg: types.StoreConfig{Driver: types.StorePostgres}, want: types.ErrDSNEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(context.Background(), types.StoreConfig{Driver: types.StoreSQLite, DataDir: dir}, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "snapshots.jsonl"))
	assert.NoError(t, err)

	infos, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}
