package sqlite

// Schema DDL. The database is rebuilt from the JSONL mirror on every open.
const (
	createSnapshots = `CREATE TABLE snapshots (
    workspace TEXT PRIMARY KEY,
    snapshot_id TEXT NOT NULL,
    loaded_at TEXT NOT NULL,
    item_count INTEGER NOT NULL,
    payload TEXT NOT NULL
);`

	createSnapshotsIDIndex = `CREATE UNIQUE INDEX idx_snapshots_id ON snapshots(snapshot_id);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createSnapshots,
	createSnapshotsIDIndex,
}

// Storage file names inside the data directory.
const (
	dbFile        = "catalogue.db"
	snapshotsFile = "snapshots.jsonl"
)
