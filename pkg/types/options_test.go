package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOptionsApplyDoesNotMutate(t *testing.T) {
	base := DefaultCatalogOptions()
	tag := IDRef("tag.sales", ObjectTypeTag)

	got := base.Apply(
		WithTypes(CatalogItemAttribute),
		WithIncludeTags(tag),
		WithDataset(IDRef("dataset.csv", ObjectTypeDataSet)),
		WithProduction(true),
	)

	assert.Equal(t, AllCatalogItemTypes, base.Types, "base types must not change")
	assert.Empty(t, base.IncludeTags)
	assert.Nil(t, base.Dataset)
	assert.Nil(t, base.Production)

	assert.Equal(t, []CatalogItemType{CatalogItemAttribute}, got.Types)
	assert.Equal(t, []ObjRef{tag}, got.IncludeTags)
	require.NotNil(t, got.Production)
	assert.True(t, *got.Production)
}

func TestCatalogOptionsCloneIsDeep(t *testing.T) {
	orig := DefaultCatalogOptions().Apply(WithProduction(false))
	cp := orig.Clone()
	cp.Types[0] = CatalogItemFact
	*cp.Production = true

	assert.Equal(t, CatalogItemAttribute, orig.Types[0])
	assert.False(t, *orig.Production)
}

func TestAvailabilityOptionsValidate(t *testing.T) {
	item := SimpleMeasure{LocalIdentifier: "m1", Item: IDRef("metric.revenue", ObjectTypeMeasure)}
	insight := Insight{Buckets: []Bucket{{LocalIdentifier: "measures", Items: []AttributeOrMeasure{item}}}}

	tests := []struct {
		name    string
		opts    AvailabilityOptions
		wantErr error
	}{
		{name: "neither items nor insight", opts: AvailabilityOptions{}, wantErr: ErrNoItemsOrInsight},
		{name: "empty item list", opts: AvailabilityOptions{Items: []AttributeOrMeasure{}}, wantErr: ErrNoItemsOrInsight},
		{name: "items only", opts: AvailabilityOptions{}.WithItems(item)},
		{name: "insight only", opts: AvailabilityOptions{}.WithInsight(insight)},
		{name: "both", opts: AvailabilityOptions{Items: []AttributeOrMeasure{item}, Insight: &insight}, wantErr: ErrItemsAndInsight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAvailabilityOptionsItemSourcesAreExclusive(t *testing.T) {
	item := Attribute{LocalIdentifier: "a1", DisplayForm: IDRef("label.city", ObjectTypeDisplayForm)}
	insight := Insight{Buckets: []Bucket{{LocalIdentifier: "view", Items: []AttributeOrMeasure{item}}}}

	withInsight := AvailabilityOptions{}.WithItems(item).WithInsight(insight)
	assert.Nil(t, withInsight.Items)
	require.NotNil(t, withInsight.Insight)
	assert.Equal(t, []AttributeOrMeasure{item}, withInsight.RelevantItems())

	withItems := withInsight.WithItems(item)
	assert.Nil(t, withItems.Insight)
	assert.NotNil(t, withInsight.Insight, "receiver must keep its insight")
}

func TestCatalogOptionsEqual(t *testing.T) {
	tag := IDRef("tag.sales", ObjectTypeTag)
	base := DefaultCatalogOptions()

	tests := []struct {
		name  string
		other CatalogOptions
		want  bool
	}{
		{name: "same defaults", other: DefaultCatalogOptions(), want: true},
		{name: "nil tag lists equal empty", other: CatalogOptions{Types: base.Types}, want: true},
		{name: "different types", other: base.Apply(WithTypes(CatalogItemFact)), want: false},
		{name: "include tag", other: base.Apply(WithIncludeTags(tag)), want: false},
		{name: "exclude tag", other: base.Apply(WithExcludeTags(tag)), want: false},
		{name: "dataset", other: base.Apply(WithDataset(IDRef("dataset.csv", ObjectTypeDataSet))), want: false},
		{name: "production", other: base.Apply(WithProduction(true)), want: false},
		{name: "skip groups", other: base.Apply(WithoutGroups()), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base))
		})
	}

	a := base.Apply(WithProduction(false), WithIncludeTags(tag))
	b := base.Apply(WithProduction(false), WithIncludeTags(IDRef("tag.sales", "")))
	assert.True(t, a.Equal(b), "identifier refs compare by identifier")
	assert.False(t, a.Equal(base.Apply(WithProduction(true), WithIncludeTags(tag))))
}

func TestSnapshotStamped(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	got := Snapshot{Workspace: "ws"}.Stamped(now)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, now, got.LoadedAt)

	kept := Snapshot{ID: "fixed", LoadedAt: now.Add(-time.Hour)}.Stamped(now)
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, now.Add(-time.Hour), kept.LoadedAt)

	assert.NotEqual(t, NewSnapshotID(), NewSnapshotID())
}
