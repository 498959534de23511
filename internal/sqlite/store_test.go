package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

func testSnapshot(workspace string) types.Snapshot {
	tag := types.IDRef("tag.sales", types.ObjectTypeTag)
	attr := types.CatalogAttribute{
		Attribute: types.MetadataObject{ID: "attr.city", URI: "/gdc/md/" + workspace + "/obj/1", Title: "City", Production: true},
		DefaultDisplayForm: types.DisplayForm{
			MetadataObject: types.MetadataObject{ID: "label.city", URI: "/gdc/md/" + workspace + "/obj/2", Title: "City"},
			AttributeURI:   "/gdc/md/" + workspace + "/obj/1",
		},
		GroupRefs: []types.ObjRef{tag},
	}
	fact := types.CatalogFact{Fact: types.MetadataObject{ID: "fact.amount", URI: "/gdc/md/" + workspace + "/obj/20", Title: "Amount"}}
	return types.Snapshot{
		Workspace: workspace,
		Options:   types.DefaultCatalogOptions(),
		Groups:    []types.CatalogGroup{{Title: "Sales", Tag: tag}},
		Items:     []types.CatalogItem{attr, fact},
		Mappings: types.Mappings{
			AttributeByID:   map[string]types.MetadataObject{"attr.city": attr.Attribute},
			DisplayFormByID: map[string]types.DisplayForm{"label.city": attr.DefaultDisplayForm},
			FactByID:        map[string]types.CatalogFact{"fact.amount": fact},
		},
	}
}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	openTestStore(t, dir)

	for _, name := range []string{dbFile, snapshotsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestSaveAssignsIDAndLoadedAt(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	info, err := s.Save(ctx, testSnapshot("ws"))
	require.NoError(t, err)

	id, err := uuid.Parse(info.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "ws", info.Workspace)
	assert.Equal(t, 2, info.ItemCount)
	assert.WithinDuration(t, time.Now(), info.LoadedAt, time.Minute)
}

func TestSaveKeepsGivenIDAndLoadedAt(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	snap := testSnapshot("ws")
	snap.ID = "fixed"
	snap.LoadedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	info, err := s.Save(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "fixed", info.ID)
	assert.True(t, snap.LoadedAt.Equal(info.LoadedAt))
}

func TestSaveRejectsEmptyWorkspace(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.Save(context.Background(), testSnapshot(""))
	assert.ErrorIs(t, err, types.ErrWorkspaceEmpty)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	info, err := s.Save(ctx, testSnapshot("ws"))
	require.NoError(t, err)

	got, err := s.Load(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, "ws", got.Workspace)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "City", got.Items[0].Title())
	assert.Equal(t, types.CatalogItemFact, got.Items[1].ItemType())
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "Sales", got.Groups[0].Title)
	uri, err := got.Mappings.DisplayFormURI("label.city")
	require.NoError(t, err)
	assert.Equal(t, "/gdc/md/ws/obj/2", uri)
}

func TestSaveReplacesWorkspaceSnapshot(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	first, err := s.Save(ctx, testSnapshot("ws"))
	require.NoError(t, err)
	snap := testSnapshot("ws")
	snap.Items = snap.Items[:1]
	second, err := s.Save(ctx, snap)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, second.ID, infos[0].ID)
	assert.Equal(t, 1, infos[0].ItemCount)
}

func TestLoadNotFound(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
}

func TestListOrderedByWorkspace(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	for _, ws := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Save(ctx, testSnapshot(ws))
		require.NoError(t, err)
	}

	infos, err := s.List(ctx)
	require.NoError(t, err)
	var got []string
	for _, info := range infos {
		got = append(got, info.Workspace)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, got)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	ctx := context.Background()

	_, err := s.Save(ctx, testSnapshot("ws"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "ws"))

	_, err = s.Load(ctx, "ws")
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "ws"), types.ErrSnapshotNotFound)

	data, err := os.ReadFile(filepath.Join(dir, snapshotsFile))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReopenRestoresFromMirror(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	a, err := s.Save(ctx, testSnapshot("a"))
	require.NoError(t, err)
	_, err = s.Save(ctx, testSnapshot("b"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(dir, snapshotsFile))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)

	reopened := openTestStore(t, dir)
	infos, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, a.ID, infos[0].ID)
	assert.True(t, a.LoadedAt.Equal(infos[0].LoadedAt))

	got, err := reopened.Load(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	ctx := context.Background()
	_, err = s.Save(ctx, testSnapshot("ws"))
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.Load(ctx, "ws")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Delete(ctx, "ws"), types.ErrStoreClosed)
}
