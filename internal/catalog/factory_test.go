package catalog_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/internal/bear/beartest"
	"github.com/mesh-intelligence/catalogue/internal/catalog"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

func newFixtureFactory(t *testing.T) (*catalog.Factory, *beartest.Server) {
	t.Helper()
	srv := beartest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddWorkspace(beartest.WorkspaceID, beartest.Fixture())

	client, err := bear.New(srv.URL, bear.WithPageSize(4))
	require.NoError(t, err)
	return catalog.NewFactory(client, beartest.WorkspaceID), srv
}

func itemURIs(items []types.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.URI())
	}
	return out
}

func TestFactoryLoad(t *testing.T) {
	factory, srv := newFixtureFactory(t)

	cat, err := factory.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		beartest.AttrCityURI, beartest.AttrProductURI,
		beartest.MetricRevenueURI, beartest.MetricHiddenURI,
		beartest.FactAmountURI, beartest.FactQuantityURI,
		beartest.DataSetCreatedURI, beartest.DataSetClosedURI,
	}, itemURIs(cat.Items()))
	assert.Len(t, cat.Groups(), 2)

	attrs := cat.Attributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "label.city", attrs[0].DefaultDisplayForm.ID)
	require.Len(t, attrs[0].GeoPinDisplayForms, 1)
	assert.Equal(t, "GDC.geo.pin", attrs[0].GeoPinDisplayForms[0].FormType)

	measures := cat.Measures()
	require.Len(t, measures, 2)
	assert.False(t, measures[0].Measure.Unlisted)
	assert.True(t, measures[1].Measure.Unlisted, "hidden metric is flagged from the metric query")

	assert.Len(t, cat.Facts(), 2)
	assert.Len(t, cat.DateDatasets(), 2)

	m := cat.Mappings()
	assert.Equal(t, beartest.AttrCityURI, m.AttributeByID["attr.city"].URI)
	assert.Equal(t, beartest.AttrCityURI, m.AttributeByDisplayFormURI[beartest.LabelCityGeoURI].URI)
	assert.Equal(t, beartest.LabelProductURI, m.DisplayFormByID["label.product"].URI)
	assert.True(t, m.MeasureByID["metric.hidden"].Measure.Unlisted)
	assert.Equal(t, beartest.FactQuantityURI, m.FactByID["fact.quantity"].Fact.URI)
	assert.Equal(t, beartest.ClosedYearURI, m.DateAttributeByID["closed.year"].Attribute.URI)

	assert.Equal(t, 2, srv.Calls(beartest.ResourceLoadCatalog), "six items in pages of four")
	assert.Equal(t, 1, srv.Calls(beartest.ResourceObjectsQuery))
	assert.Equal(t, 1, srv.Calls(beartest.ResourceLoadGroups))
	assert.Equal(t, 1, srv.Calls(beartest.ResourceObjectsGet))
	assert.Equal(t, 1, srv.Calls(beartest.ResourceLoadDateDataSets))
	assert.Zero(t, srv.Calls(beartest.ResourceIdentifiers))

	var body struct {
		DateDataSetsRequest bear.DateDataSetsRequest `json:"dateDataSetsRequest"`
	}
	require.NoError(t, json.Unmarshal(srv.LastRequest(beartest.ResourceLoadDateDataSets), &body))
	require.NotNil(t, body.DateDataSetsRequest.RequiredDataSets)
	assert.Equal(t, bear.RequiredDataSetsAll, body.DateDataSetsRequest.RequiredDataSets.Type)
}

func TestFactoryLoadProduction(t *testing.T) {
	factory, srv := newFixtureFactory(t)

	cat, err := factory.WithOptions(types.WithProduction(true)).Load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, itemURIs(cat.Items()), beartest.FactQuantityURI)

	var body struct {
		CatalogRequest bear.CatalogRequest `json:"catalogRequest"`
	}
	require.NoError(t, json.Unmarshal(srv.LastRequest(beartest.ResourceLoadCatalog), &body))
	require.NotNil(t, body.CatalogRequest.Production)
	assert.Equal(t, 1, *body.CatalogRequest.Production)
}

func TestFactoryLoadForTypes(t *testing.T) {
	factory, srv := newFixtureFactory(t)

	cat, err := factory.ForTypes(types.CatalogItemFact).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{beartest.FactAmountURI, beartest.FactQuantityURI}, itemURIs(cat.Items()))
	assert.Zero(t, srv.Calls(beartest.ResourceObjectsGet), "no attributes to describe")
	assert.Zero(t, srv.Calls(beartest.ResourceObjectsQuery), "measures were not requested")
	assert.Zero(t, srv.Calls(beartest.ResourceLoadDateDataSets))
	assert.Equal(t, 1, srv.Calls(beartest.ResourceLoadGroups))
}

func TestFactoryLoadForDataset(t *testing.T) {
	factory, srv := newFixtureFactory(t)

	cat, err := factory.ForDataset(types.URIRefOf(beartest.DataSetCSVURI)).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cat.DateDatasets(), "no date dataset belongs to the csv dataset")
	assert.Equal(t, 1, srv.Calls(beartest.ResourceIdentifiers), "the dataset uri is resolved once")

	var items struct {
		CatalogRequest bear.CatalogRequest `json:"catalogRequest"`
	}
	require.NoError(t, json.Unmarshal(srv.LastRequest(beartest.ResourceLoadCatalog), &items))
	assert.Equal(t, []string{"dataset.csv"}, items.CatalogRequest.CSVDataSets)

	var dates struct {
		DateDataSetsRequest bear.DateDataSetsRequest `json:"dateDataSetsRequest"`
	}
	require.NoError(t, json.Unmarshal(srv.LastRequest(beartest.ResourceLoadDateDataSets), &dates))
	require.NotNil(t, dates.DateDataSetsRequest.RequiredDataSets)
	assert.Equal(t, bear.RequiredDataSetsCustom, dates.DateDataSetsRequest.RequiredDataSets.Type)
	assert.Equal(t, []string{"dataset.csv"}, dates.DateDataSetsRequest.RequiredDataSets.CustomIdentifiers)
}

func TestFactoryLoadWithoutMetricQuery(t *testing.T) {
	factory, srv := newFixtureFactory(t)
	srv.QueryNotFound = true

	cat, err := factory.Load(context.Background())
	require.NoError(t, err)
	for _, m := range cat.Measures() {
		assert.False(t, m.Measure.Unlisted, m.Measure.ID)
	}
}

func TestFactoryLoadFailure(t *testing.T) {
	factory, srv := newFixtureFactory(t)
	srv.Fail[beartest.ResourceLoadGroups] = true

	_, err := factory.Load(context.Background())
	require.Error(t, err)

	var apiErr *bear.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestFactoryIsImmutable(t *testing.T) {
	factory, _ := newFixtureFactory(t)

	narrowed := factory.ForTypes(types.CatalogItemAttribute).
		IncludeTags(types.IDRef("tag.sales", types.ObjectTypeTag)).
		ExcludeTags(types.IDRef("tag.product", types.ObjectTypeTag))

	assert.Equal(t, types.AllCatalogItemTypes, factory.Options().Types)
	assert.Empty(t, factory.Options().IncludeTags)
	assert.Equal(t, []types.CatalogItemType{types.CatalogItemAttribute}, narrowed.Options().Types)
	assert.Len(t, narrowed.Options().IncludeTags, 1)
	assert.Len(t, narrowed.Options().ExcludeTags, 1)
	assert.Equal(t, beartest.WorkspaceID, narrowed.Workspace())
}

func TestCatalogAvailableItems(t *testing.T) {
	factory, srv := newFixtureFactory(t)
	cat, err := factory.Load(context.Background())
	require.NoError(t, err)

	product := types.Attribute{LocalIdentifier: "a1", DisplayForm: types.IDRef("label.product", types.ObjectTypeDisplayForm)}
	result, err := cat.AvailableItems().ForItems(product).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		beartest.AttrCityURI, beartest.AttrProductURI,
		beartest.MetricHiddenURI, beartest.FactQuantityURI,
		beartest.DataSetCreatedURI,
	}, itemURIs(result.AvailableItems()))
	assert.Len(t, result.AvailableGroups(), 2)

	var body struct {
		CatalogRequest bear.CatalogRequest `json:"catalogRequest"`
	}
	require.NoError(t, json.Unmarshal(srv.LastRequest(beartest.ResourceLoadCatalog), &body))
	assert.Equal(t, []string{beartest.AttrProductURI}, body.CatalogRequest.BucketItems)
}

func TestCatalogFromSnapshot(t *testing.T) {
	factory, srv := newFixtureFactory(t)
	loaded, err := factory.Load(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(loaded.Snapshot())
	require.NoError(t, err)
	var snap types.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	client, err := bear.New(srv.URL)
	require.NoError(t, err)
	restored := catalog.NewCatalogFromSnapshot(client, snap)
	assert.Equal(t, itemURIs(loaded.Items()), itemURIs(restored.Items()))
	assert.Equal(t, beartest.WorkspaceID, restored.Workspace())

	revenue := types.SimpleMeasure{LocalIdentifier: "m1", Item: types.IDRef("metric.revenue", types.ObjectTypeMeasure)}
	result, err := restored.AvailableItems().
		ForTypes(types.CatalogItemAttribute, types.CatalogItemFact).
		ForItems(revenue).
		Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{beartest.AttrCityURI, beartest.FactAmountURI}, itemURIs(result.AvailableItems()))
}
