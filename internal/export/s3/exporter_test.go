package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// mockRoundTripper is a tiny fake S3 holding objects in memory; it serves
// path-style PutObject and GetObject.
type mockRoundTripper struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func newMockRoundTripper() *mockRoundTripper {
	return &mockRoundTripper{objects: make(map[string][]byte), headers: make(map[string]http.Header)}
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Path-style: /<bucket>/<key>
	key := strings.TrimPrefix(req.URL.Path, "/")
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		m.objects[key] = body
		m.headers[key] = req.Header.Clone()
		return response(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	case http.MethodGet:
		body, ok := m.objects[key]
		if !ok {
			return response(http.StatusNotFound,
				[]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`),
				http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return response(http.StatusOK, body, http.Header{
			"Content-Type":  {contentType},
			"Last-Modified": {time.Now().UTC().Format(http.TimeFormat)},
		}), nil
	}
	return response(http.StatusNotImplemented, nil, http.Header{}), nil
}

func response(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        header,
	}
}

func newMockExporter(t *testing.T, prefix string) (*Exporter, *mockRoundTripper) {
	t.Helper()
	rt := newMockRoundTripper()
	e, err := New(context.Background(), Config{
		Bucket:          "snapshots",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		Prefix:          prefix,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return e, rt
}

func testSnapshot() types.Snapshot {
	fact := types.CatalogFact{Fact: types.MetadataObject{ID: "fact.amount", URI: "/gdc/md/ws/obj/20", Title: "Amount"}}
	return types.Snapshot{
		ID:        "0190b7d2-0000-7000-8000-000000000001",
		Workspace: "ws",
		LoadedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Options:   types.DefaultCatalogOptions(),
		Items:     []types.CatalogItem{fact},
		Mappings:  types.Mappings{FactByID: map[string]types.CatalogFact{"fact.amount": fact}},
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrBucketEmpty)
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "ws/id.json"},
		{prefix: "catalogue", want: "catalogue/ws/id.json"},
		{prefix: "/nested/dir/", want: "nested/dir/ws/id.json"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			e, _ := newMockExporter(t, tt.prefix)
			assert.Equal(t, tt.want, e.Key("ws", "id"))
		})
	}
}

func TestExportFetchRoundTrip(t *testing.T) {
	e, rt := newMockExporter(t, "catalogue")
	ctx := context.Background()
	snap := testSnapshot()

	key, err := e.Export(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, "catalogue/ws/"+snap.ID+".json", key)

	stored, ok := rt.objects["snapshots/"+key]
	require.True(t, ok, "object stored under bucket path")
	assert.Contains(t, string(stored), `"workspace":"ws"`)
	assert.Equal(t, contentType, rt.headers["snapshots/"+key].Get("Content-Type"))

	got, err := e.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, snap.LoadedAt.Equal(got.LoadedAt))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Amount", got.Items[0].Title())
}

func TestExportValidation(t *testing.T) {
	e, _ := newMockExporter(t, "")
	ctx := context.Background()

	snap := testSnapshot()
	snap.Workspace = ""
	_, err := e.Export(ctx, snap)
	assert.ErrorIs(t, err, types.ErrWorkspaceEmpty)

	snap = testSnapshot()
	snap.ID = ""
	_, err = e.Export(ctx, snap)
	assert.ErrorContains(t, err, "snapshot id is empty")
}

func TestFetchMissing(t *testing.T) {
	e, _ := newMockExporter(t, "")
	_, err := e.Fetch(context.Background(), "ws/missing.json")
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
}
