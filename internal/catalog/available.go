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

// availabilityBucket names the single bucket of an availability request.
const availabilityBucket = "availability"

// AvailableItemsFactory computes which catalog items can be combined with a
// set of attributes and measures or with an insight. It is immutable: every
// With/For method returns a new factory.
type AvailableItemsFactory struct {
	catalog *Catalog
	options types.AvailabilityOptions
	ids     *filterIDCache
}

// Options returns a copy of the factory options.
func (f *AvailableItemsFactory) Options() types.AvailabilityOptions { return f.options.Clone() }

func (f *AvailableItemsFactory) with(options types.AvailabilityOptions) *AvailableItemsFactory {
	return &AvailableItemsFactory{catalog: f.catalog, options: options, ids: &filterIDCache{}}
}

// WithOptions returns a factory with the catalog filters changed by opts.
func (f *AvailableItemsFactory) WithOptions(opts ...types.CatalogOption) *AvailableItemsFactory {
	options := f.options.Clone()
	options.CatalogOptions = options.CatalogOptions.Apply(opts...)
	return f.with(options)
}

// ForDataset returns a factory restricted to one dataset.
func (f *AvailableItemsFactory) ForDataset(dataset types.ObjRef) *AvailableItemsFactory {
	return f.WithOptions(types.WithDataset(dataset))
}

// ForTypes returns a factory computing availability of the given item types.
func (f *AvailableItemsFactory) ForTypes(itemTypes ...types.CatalogItemType) *AvailableItemsFactory {
	return f.WithOptions(types.WithTypes(itemTypes...))
}

// IncludeTags returns a factory considering only items carrying one of tags.
func (f *AvailableItemsFactory) IncludeTags(tags ...types.ObjRef) *AvailableItemsFactory {
	return f.WithOptions(types.WithIncludeTags(tags...))
}

// ExcludeTags returns a factory ignoring items carrying one of tags.
func (f *AvailableItemsFactory) ExcludeTags(tags ...types.ObjRef) *AvailableItemsFactory {
	return f.WithOptions(types.WithExcludeTags(tags...))
}

// ForItems returns a factory computing availability for items.
func (f *AvailableItemsFactory) ForItems(items ...types.AttributeOrMeasure) *AvailableItemsFactory {
	return f.with(f.options.WithItems(items...))
}

// ForInsight returns a factory computing availability for the insight items.
func (f *AvailableItemsFactory) ForInsight(insight types.Insight) *AvailableItemsFactory {
	return f.with(f.options.WithInsight(insight))
}

// Load asks the backend which catalog items and date datasets can be combined
// with the configured items and returns the catalog narrowed to them.
//
// Options without items and insight fail with types.ErrNoItemsOrInsight
// before any backend call. A nil item fails with a *types.InvariantError.
// Backend errors are returned wrapped.
func (f *AvailableItemsFactory) Load(ctx context.Context) (*CatalogWithAvailableItems, error) {
	if err := f.options.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	relevant, err := eligibleItems(f.options.RelevantItems())
	if err != nil {
		return nil, err
	}
	translated, err := translateItems(relevant, f.catalog.mappings)
	if err != nil {
		return nil, err
	}
	request := types.Insight{Buckets: []types.Bucket{{LocalIdentifier: availabilityBucket, Items: translated}}}

	var (
		itemURIs     []string
		dateDatasets []types.CatalogDateDataset
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		itemURIs, err = f.loadAvailableCatalogItems(gctx, request.Clone())
		return err
	})
	g.Go(func() error {
		var err error
		dateDatasets, err = f.loadAvailableDateDatasets(gctx, request.Clone())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(itemURIs))
	for _, uri := range itemURIs {
		available[uri] = true
	}
	var items []types.CatalogItem
	for _, item := range f.catalog.items {
		if item.ItemType() != types.CatalogItemDateDataset && available[item.URI()] {
			items = append(items, item)
		}
	}
	var groups []types.CatalogGroup
	if !f.options.SkipGroups {
		groups = groupsTagging(f.catalog.groups, items)
	}
	for _, ds := range dateDatasets {
		items = append(items, ds)
	}

	f.catalog.settings.logger.Debug("availability resolved",
		zap.String("workspace", f.catalog.workspace),
		zap.Int("relevant", len(relevant)),
		zap.Int("available", len(items)),
		zap.Duration("elapsed", time.Since(start)))

	return &CatalogWithAvailableItems{
		Catalog:         f.catalog,
		availableItems:  items,
		availableGroups: groups,
	}, nil
}

func (f *AvailableItemsFactory) loadAvailableCatalogItems(ctx context.Context, request types.Insight) ([]string, error) {
	itemTypes := convert.CompatibleItemTypes(f.options.Types)
	if len(itemTypes) == 0 {
		return nil, nil
	}
	content, err := convert.VisualizationObject(request.Buckets)
	if err != nil {
		return nil, err
	}
	ids, err := f.ids.get(ctx, f.catalog.backend, f.catalog.workspace, f.options.CatalogOptions)
	if err != nil {
		return nil, err
	}
	uris, err := f.catalog.backend.LoadAvailableItemURIs(ctx, f.catalog.workspace, bear.LoadItemsParams{
		Types:           itemTypes,
		IncludeWithTags: nonEmpty(ids.includeTags),
		ExcludeWithTags: nonEmpty(ids.excludeTags),
		Production:      productionFlag(f.options.CatalogOptions),
		CSVDataSets:     csvDataSets(f.options.CatalogOptions, ids),
		BucketItems:     content,
		AttributesMap:   f.catalog.mappings.AttributeByDisplayFormURI,
	})
	if err != nil {
		return nil, fmt.Errorf("load available items: %w", err)
	}
	return uris, nil
}

func (f *AvailableItemsFactory) loadAvailableDateDatasets(ctx context.Context, request types.Insight) ([]types.CatalogDateDataset, error) {
	if !types.ContainsItemType(f.options.Types, types.CatalogItemDateDataset) {
		return nil, nil
	}
	content, err := convert.VisualizationObject(request.Buckets)
	if err != nil {
		return nil, err
	}
	ids, err := f.ids.get(ctx, f.catalog.backend, f.catalog.workspace, f.options.CatalogOptions)
	if err != nil {
		return nil, err
	}
	resp, err := f.catalog.backend.LoadDateDataSets(ctx, f.catalog.workspace, bear.LoadDateDataSetsParams{
		BucketItems:                  content,
		AttributesMap:                f.catalog.mappings.AttributeByDisplayFormURI,
		DataSetIdentifier:            ids.dataSet,
		ReturnAllRelatedDateDataSets: true,
		IncludeObjectsWithTags:       nonEmpty(ids.includeTags),
		ExcludeObjectsWithTags:       nonEmpty(ids.excludeTags),
	})
	if err != nil {
		return nil, fmt.Errorf("load available date datasets: %w", err)
	}
	out := make([]types.CatalogDateDataset, 0, len(resp.DateDataSets))
	for _, ds := range resp.DateDataSets {
		out = append(out, convert.DateDataset(ds))
	}
	return out, nil
}

// groupsTagging returns the groups whose tag is carried by at least one item,
// in group order.
func groupsTagging(groups []types.CatalogGroup, items []types.CatalogItem) []types.CatalogGroup {
	var out []types.CatalogGroup
	for _, g := range groups {
		for _, item := range items {
			if hasTag(item, g.Tag) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func hasTag(item types.CatalogItem, tag types.ObjRef) bool {
	for _, ref := range item.Groups() {
		if types.RefsEqual(ref, tag) {
			return true
		}
	}
	return false
}

// CatalogWithAvailableItems is a catalog together with the subset of its
// items that can be combined with the items an availability query was
// computed for.
type CatalogWithAvailableItems struct {
	*Catalog
	availableItems  []types.CatalogItem
	availableGroups []types.CatalogGroup
}

// AvailableItems returns the available attributes, measures and facts in
// catalog order followed by the available date datasets.
func (c *CatalogWithAvailableItems) AvailableItems() []types.CatalogItem { return c.availableItems }

// AvailableGroups returns the groups tagging at least one available item.
func (c *CatalogWithAvailableItems) AvailableGroups() []types.CatalogGroup { return c.availableGroups }

// AvailableAttributes returns the available attributes.
func (c *CatalogWithAvailableItems) AvailableAttributes() []types.CatalogAttribute {
	return types.ItemsOfType[types.CatalogAttribute](c.availableItems)
}

// AvailableMeasures returns the available measures.
func (c *CatalogWithAvailableItems) AvailableMeasures() []types.CatalogMeasure {
	return types.ItemsOfType[types.CatalogMeasure](c.availableItems)
}

// AvailableFacts returns the available facts.
func (c *CatalogWithAvailableItems) AvailableFacts() []types.CatalogFact {
	return types.ItemsOfType[types.CatalogFact](c.availableItems)
}

// AvailableDateDatasets returns the available date datasets.
func (c *CatalogWithAvailableItems) AvailableDateDatasets() []types.CatalogDateDataset {
	return types.ItemsOfType[types.CatalogDateDataset](c.availableItems)
}
