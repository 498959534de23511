package catalog

import (
	"time"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// Catalog is a loaded workspace catalog. It is read-only.
type Catalog struct {
	backend   Backend
	workspace string
	options   types.CatalogOptions
	settings  settings
	id        string
	loadedAt  time.Time
	groups    []types.CatalogGroup
	items     []types.CatalogItem
	mappings  types.Mappings
}

// NewCatalogFromSnapshot rebuilds a catalog from a stored snapshot. The
// backend is only used by availability queries.
func NewCatalogFromSnapshot(backend Backend, s types.Snapshot, opts ...Option) *Catalog {
	return &Catalog{
		backend:   backend,
		workspace: s.Workspace,
		options:   s.Options.Clone(),
		settings:  newSettings(opts),
		id:        s.ID,
		loadedAt:  s.LoadedAt,
		groups:    s.Groups,
		items:     s.Items,
		mappings:  s.Mappings,
	}
}

// Workspace returns the workspace the catalog belongs to.
func (c *Catalog) Workspace() string { return c.workspace }

// LoadedAt returns when the catalog was loaded from the backend.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Options returns a copy of the options the catalog was loaded with.
func (c *Catalog) Options() types.CatalogOptions { return c.options.Clone() }

// Groups returns the catalog groups.
func (c *Catalog) Groups() []types.CatalogGroup { return c.groups }

// Items returns every catalog item: attributes, measures and facts in
// backend order followed by the date datasets.
func (c *Catalog) Items() []types.CatalogItem { return c.items }

// Attributes returns the attribute items.
func (c *Catalog) Attributes() []types.CatalogAttribute {
	return types.ItemsOfType[types.CatalogAttribute](c.items)
}

// Measures returns the measure items.
func (c *Catalog) Measures() []types.CatalogMeasure {
	return types.ItemsOfType[types.CatalogMeasure](c.items)
}

// Facts returns the fact items.
func (c *Catalog) Facts() []types.CatalogFact {
	return types.ItemsOfType[types.CatalogFact](c.items)
}

// DateDatasets returns the date dataset items.
func (c *Catalog) DateDatasets() []types.CatalogDateDataset {
	return types.ItemsOfType[types.CatalogDateDataset](c.items)
}

// Mappings returns the identifier mappings built while loading.
func (c *Catalog) Mappings() types.Mappings { return c.mappings }

// Snapshot returns the catalog in storable form. The ID is empty unless the
// catalog was rebuilt from a snapshot.
func (c *Catalog) Snapshot() types.Snapshot {
	return types.Snapshot{
		ID:        c.id,
		Workspace: c.workspace,
		LoadedAt:  c.loadedAt,
		Options:   c.options.Clone(),
		Groups:    c.groups,
		Items:     c.items,
		Mappings:  c.mappings,
	}
}

// AvailableItems returns a factory computing the items available with a set
// of attributes and measures, seeded with the catalog options.
func (c *Catalog) AvailableItems() *AvailableItemsFactory {
	return &AvailableItemsFactory{
		catalog: c,
		options: types.AvailabilityOptions{CatalogOptions: c.options.Clone()},
		ids:     &filterIDCache{},
	}
}
