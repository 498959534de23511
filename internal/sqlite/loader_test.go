package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), dbFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range schemaStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestLoadJSONL(t *testing.T) {
	tests := []struct {
		name      string
		jsonl     string
		wantRows  int
		wantIDs   map[string]string
		wantItems map[string]int
	}{
		{
			name:     "empty mirror",
			jsonl:    "",
			wantRows: 0,
		},
		{
			name: "unknown fields are tolerated",
			jsonl: `{"id":"s1","workspace":"ws1","loadedAt":"2026-01-02T03:04:05Z","items":[{},{}],"future":"x"}
`,
			wantRows:  1,
			wantIDs:   map[string]string{"ws1": "s1"},
			wantItems: map[string]int{"ws1": 2},
		},
		{
			name: "records without workspace or id are skipped",
			jsonl: `{"id":"s1","loadedAt":"2026-01-02T03:04:05Z"}
{"workspace":"ws2","loadedAt":"2026-01-02T03:04:05Z"}
{"id":"s3","workspace":"ws3","loadedAt":"2026-01-02T03:04:05Z"}
`,
			wantRows: 1,
			wantIDs:  map[string]string{"ws3": "s3"},
		},
		{
			name: "later record of a workspace wins",
			jsonl: `{"id":"s1","workspace":"ws1","loadedAt":"2026-01-02T03:04:05Z"}
{"id":"s2","workspace":"ws1","loadedAt":"2026-01-03T03:04:05Z","items":[{}]}
`,
			wantRows:  1,
			wantIDs:   map[string]string{"ws1": "s2"},
			wantItems: map[string]int{"ws1": 1},
		},
		{
			name: "malformed lines are skipped",
			jsonl: `{"id":"s1","workspace":"ws1","loadedAt":"2026-01-02T03:04:05Z"}
{broken
`,
			wantRows: 1,
			wantIDs:  map[string]string{"ws1": "s1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			path := filepath.Join(t.TempDir(), snapshotsFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.jsonl), 0o644))

			require.NoError(t, loadJSONL(context.Background(), db, path, zap.NewNop()))

			var count int
			require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count))
			assert.Equal(t, tt.wantRows, count)

			for ws, id := range tt.wantIDs {
				var got string
				require.NoError(t, db.QueryRow("SELECT snapshot_id FROM snapshots WHERE workspace = ?", ws).Scan(&got))
				assert.Equal(t, id, got)
			}
			for ws, n := range tt.wantItems {
				var got int
				require.NoError(t, db.QueryRow("SELECT item_count FROM snapshots WHERE workspace = ?", ws).Scan(&got))
				assert.Equal(t, n, got)
			}
		})
	}
}

func TestLoadJSONLMissingFile(t *testing.T) {
	db := newTestDB(t)
	err := loadJSONL(context.Background(), db, filepath.Join(t.TempDir(), "missing.jsonl"), zap.NewNop())
	assert.Error(t, err)
}
