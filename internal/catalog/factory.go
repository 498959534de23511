package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/internal/convert"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// unlistedMetricsPageSize is the page size of the unlisted metrics query.
const unlistedMetricsPageSize = 50

// Factory loads the catalog of one workspace. A Factory is immutable: every
// With/For method returns a new Factory.
type Factory struct {
	backend   Backend
	workspace string
	options   types.CatalogOptions
	settings  settings
	ids       *filterIDCache
}

// NewFactory returns a factory loading every item type of workspace.
func NewFactory(backend Backend, workspace string, opts ...Option) *Factory {
	return &Factory{
		backend:   backend,
		workspace: workspace,
		options:   types.DefaultCatalogOptions(),
		settings:  newSettings(opts),
		ids:       &filterIDCache{},
	}
}

// Workspace returns the workspace the factory loads.
func (f *Factory) Workspace() string { return f.workspace }

// Options returns a copy of the factory options.
func (f *Factory) Options() types.CatalogOptions { return f.options.Clone() }

// WithOptions returns a factory with opts applied.
func (f *Factory) WithOptions(opts ...types.CatalogOption) *Factory {
	return &Factory{
		backend:   f.backend,
		workspace: f.workspace,
		options:   f.options.Apply(opts...),
		settings:  f.settings,
		ids:       &filterIDCache{},
	}
}

// ForDataset returns a factory restricted to one dataset.
func (f *Factory) ForDataset(dataset types.ObjRef) *Factory {
	return f.WithOptions(types.WithDataset(dataset))
}

// ForTypes returns a factory loading only the given item types.
func (f *Factory) ForTypes(itemTypes ...types.CatalogItemType) *Factory {
	return f.WithOptions(types.WithTypes(itemTypes...))
}

// IncludeTags returns a factory loading only items carrying one of tags.
func (f *Factory) IncludeTags(tags ...types.ObjRef) *Factory {
	return f.WithOptions(types.WithIncludeTags(tags...))
}

// ExcludeTags returns a factory skipping items carrying one of tags.
func (f *Factory) ExcludeTags(tags ...types.ObjRef) *Factory {
	return f.WithOptions(types.WithExcludeTags(tags...))
}

// Load loads the catalog. Catalog items, unlisted metrics and groups are
// loaded concurrently; attribute objects and date datasets follow.
func (f *Factory) Load(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	var (
		bearItems []bear.CatalogItem
		unlisted  []types.CatalogMeasure
		groups    []types.CatalogGroup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bearItems, err = f.loadBearItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		unlisted, err = f.loadUnlistedMetrics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = f.loadGroups(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	objects, err := f.loadDisplayFormsAndAttributes(ctx, bearItems)
	if err != nil {
		return nil, err
	}
	lookups := newLookups(objects)

	items := make([]types.CatalogItem, 0, len(bearItems))
	for _, bi := range bearItems {
		item, err := convert.CatalogItem(bi, lookups.displayFormByURI)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	items = withUnlistedFlag(items, unlisted)

	dateDatasets, err := f.loadDateDatasets(ctx, lookups.attributeByDisplayFormURI)
	if err != nil {
		return nil, err
	}

	mappings := types.Mappings{
		AttributeByID:             lookups.attributeByID,
		AttributeByDisplayFormURI: lookups.attributeByDisplayFormURI,
		DisplayFormByID:           lookups.displayFormByID,
		MeasureByID:               map[string]types.CatalogMeasure{},
		FactByID:                  map[string]types.CatalogFact{},
		DateAttributeByID:         map[string]types.CatalogDateAttribute{},
	}
	for _, item := range items {
		switch v := item.(type) {
		case types.CatalogMeasure:
			mappings.MeasureByID[v.Measure.ID] = v
		case types.CatalogFact:
			mappings.FactByID[v.Fact.ID] = v
		}
	}
	for _, ds := range dateDatasets {
		for _, attr := range ds.DateAttributes {
			mappings.DateAttributeByID[attr.Attribute.ID] = attr
		}
		items = append(items, ds)
	}

	f.settings.logger.Debug("catalog loaded",
		zap.String("workspace", f.workspace),
		zap.Int("items", len(items)),
		zap.Int("groups", len(groups)),
		zap.Duration("elapsed", time.Since(start)))

	return &Catalog{
		backend:   f.backend,
		workspace: f.workspace,
		options:   f.options.Clone(),
		settings:  f.settings,
		loadedAt:  time.Now().UTC(),
		groups:    groups,
		items:     items,
		mappings:  mappings,
	}, nil
}

func (f *Factory) filterIDs(ctx context.Context) (filterIDs, error) {
	return f.ids.get(ctx, f.backend, f.workspace, f.options)
}

func (f *Factory) loadBearItems(ctx context.Context) ([]bear.CatalogItem, error) {
	itemTypes := convert.CompatibleItemTypes(f.options.Types)
	if len(itemTypes) == 0 {
		return nil, nil
	}
	ids, err := f.filterIDs(ctx)
	if err != nil {
		return nil, err
	}
	items, err := f.backend.LoadAllItems(ctx, f.workspace, bear.LoadItemsParams{
		Types:           itemTypes,
		IncludeWithTags: nonEmpty(ids.includeTags),
		ExcludeWithTags: nonEmpty(ids.excludeTags),
		Production:      productionFlag(f.options),
		CSVDataSets:     csvDataSets(f.options, ids),
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog items: %w", err)
	}
	return items, nil
}

// loadUnlistedMetrics returns the unlisted metrics, which the catalog
// resource never flags. Backends without the query resource answer 404,
// which yields no metrics.
func (f *Factory) loadUnlistedMetrics(ctx context.Context) ([]types.CatalogMeasure, error) {
	if !types.ContainsItemType(f.options.Types, types.CatalogItemMeasure) {
		return nil, nil
	}
	objects, err := f.backend.GetObjectsByQuery(ctx, f.workspace, bear.QueryOptions{
		Category: bear.CategoryMetric,
		Limit:    unlistedMetricsPageSize,
	})
	if bear.IsNotFound(err) {
		f.settings.logger.Debug("metric query not supported", zap.String("workspace", f.workspace))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load unlisted metrics: %w", err)
	}

	var out []types.CatalogMeasure
	for _, obj := range objects {
		if obj.Metric != nil && bool(obj.Metric.Meta.Unlisted) {
			out = append(out, convert.Metric(*obj.Metric))
		}
	}
	return out, nil
}

func (f *Factory) loadGroups(ctx context.Context) ([]types.CatalogGroup, error) {
	if f.options.SkipGroups {
		return nil, nil
	}
	ids, err := f.filterIDs(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := f.backend.LoadGroups(ctx, f.workspace, bear.LoadGroupsParams{
		IncludeWithTags: nonEmpty(ids.includeTags),
		ExcludeWithTags: nonEmpty(ids.excludeTags),
		Production:      productionFlag(f.options),
		CSVDataSets:     csvDataSets(f.options, ids),
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog groups: %w", err)
	}
	return convert.Groups(groups), nil
}

// loadDisplayFormsAndAttributes fetches the attribute objects of the
// attribute items together with their default and geo pin display forms.
func (f *Factory) loadDisplayFormsAndAttributes(ctx context.Context, items []bear.CatalogItem) ([]bear.WrappedObject, error) {
	var uris []string
	for _, item := range items {
		if item.Type == bear.ItemTypeAttribute {
			uris = append(uris, item.Links.Self)
		}
	}
	for _, item := range items {
		if item.Type == bear.ItemTypeAttribute {
			uris = append(uris, item.Links.DefaultDisplayForm)
			uris = append(uris, item.Links.GeoPinDisplayForms...)
		}
	}
	uris = uniqueNonEmpty(uris)
	if len(uris) == 0 {
		return nil, nil
	}
	objects, err := f.backend.GetObjects(ctx, f.workspace, uris)
	if err != nil {
		return nil, fmt.Errorf("load display forms and attributes: %w", err)
	}
	return objects, nil
}

func (f *Factory) loadDateDatasets(ctx context.Context, attributesMap map[string]types.MetadataObject) ([]types.CatalogDateDataset, error) {
	if !types.ContainsItemType(f.options.Types, types.CatalogItemDateDataset) {
		return nil, nil
	}
	ids, err := f.filterIDs(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := f.backend.LoadDateDataSets(ctx, f.workspace, bear.LoadDateDataSetsParams{
		AttributesMap:          attributesMap,
		DataSetIdentifier:      ids.dataSet,
		ReturnAllDateDataSets:  true,
		IncludeObjectsWithTags: nonEmpty(ids.includeTags),
		ExcludeObjectsWithTags: nonEmpty(ids.excludeTags),
	})
	if err != nil {
		return nil, fmt.Errorf("load date datasets: %w", err)
	}
	out := make([]types.CatalogDateDataset, 0, len(resp.DateDataSets))
	for _, ds := range resp.DateDataSets {
		out = append(out, convert.DateDataset(ds))
	}
	return out, nil
}

// withUnlistedFlag returns items with every measure listed in unlisted
// replaced by a flagged copy.
func withUnlistedFlag(items []types.CatalogItem, unlisted []types.CatalogMeasure) []types.CatalogItem {
	if len(unlisted) == 0 {
		return items
	}
	hidden := make(map[string]bool, len(unlisted))
	for _, m := range unlisted {
		hidden[m.Measure.URI] = true
	}
	out := make([]types.CatalogItem, len(items))
	for i, item := range items {
		if m, ok := item.(types.CatalogMeasure); ok && hidden[m.Measure.URI] {
			out[i] = m.WithUnlisted(true)
			continue
		}
		out[i] = item
	}
	return out
}

// lookups index the fetched attribute and display form objects.
type lookups struct {
	attributeByID             map[string]types.MetadataObject
	attributeByDisplayFormURI map[string]types.MetadataObject
	displayFormByID           map[string]types.DisplayForm
	displayFormByURI          map[string]types.DisplayForm
}

func newLookups(objects []bear.WrappedObject) lookups {
	l := lookups{
		attributeByID:             map[string]types.MetadataObject{},
		attributeByDisplayFormURI: map[string]types.MetadataObject{},
		displayFormByID:           map[string]types.DisplayForm{},
		displayFormByURI:          map[string]types.DisplayForm{},
	}
	attributeByURI := map[string]types.MetadataObject{}
	for _, obj := range objects {
		switch {
		case obj.Attribute != nil:
			attr := convert.Metadata(obj.Attribute.Meta)
			attributeByURI[attr.URI] = attr
			l.attributeByID[attr.ID] = attr
		case obj.AttributeDisplayForm != nil:
			df := convert.DisplayForm(*obj.AttributeDisplayForm)
			l.displayFormByID[df.ID] = df
			l.displayFormByURI[df.URI] = df
		}
	}
	for uri, df := range l.displayFormByURI {
		if attr, ok := attributeByURI[df.AttributeURI]; ok {
			l.attributeByDisplayFormURI[uri] = attr
		}
	}
	return l
}

func uniqueNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
