package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantRecords int
		wantSkipped int
	}{
		{name: "empty file", content: "", wantRecords: 0},
		{name: "valid lines", content: "{\"a\":1}\n{\"b\":2}\n", wantRecords: 2},
		{name: "blank lines ignored", content: "{\"a\":1}\n\n\n{\"b\":2}", wantRecords: 2},
		{name: "malformed line skipped", content: "{\"a\":1}\nnot json\n{\"b\":2}\n", wantRecords: 2, wantSkipped: 1},
		{name: "truncated last line", content: "{\"a\":1}\n{\"b\":", wantRecords: 1, wantSkipped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.jsonl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			records, skipped, err := readJSONL(path)
			require.NoError(t, err)
			assert.Len(t, records, tt.wantRecords)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, _, err := readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestWriteJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"old\":true}\n"), 0o644))

	records := []json.RawMessage{json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`)}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestWriteJSONLEmptyTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"old\":true}\n"), 0o644))

	require.NoError(t, writeJSONL(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestInitJSONLKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	require.NoError(t, initJSONL(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n"), 0o644))
	require.NoError(t, initJSONL(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(data))
}
