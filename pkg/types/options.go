package types

// CatalogOptions select the catalog items a factory loads.
type CatalogOptions struct {
	Types       []CatalogItemType
	IncludeTags []ObjRef
	ExcludeTags []ObjRef

	// Dataset restricts the catalog to one CSV dataset. Nil means no restriction.
	Dataset ObjRef

	// Production restricts items to the production data. Nil leaves the
	// backend default in place.
	Production *bool

	// SkipGroups leaves catalog groups unloaded.
	SkipGroups bool
}

// CatalogOption modifies a copy of CatalogOptions.
type CatalogOption func(*CatalogOptions)

// DefaultCatalogOptions returns options selecting every item type and no tags.
func DefaultCatalogOptions() CatalogOptions {
	return CatalogOptions{
		Types:       append([]CatalogItemType(nil), AllCatalogItemTypes...),
		IncludeTags: []ObjRef{},
		ExcludeTags: []ObjRef{},
	}
}

// WithTypes replaces the item types.
func WithTypes(types ...CatalogItemType) CatalogOption {
	return func(o *CatalogOptions) { o.Types = append([]CatalogItemType{}, types...) }
}

// WithIncludeTags replaces the tags an item must carry.
func WithIncludeTags(tags ...ObjRef) CatalogOption {
	return func(o *CatalogOptions) { o.IncludeTags = append([]ObjRef{}, tags...) }
}

// WithExcludeTags replaces the tags an item must not carry.
func WithExcludeTags(tags ...ObjRef) CatalogOption {
	return func(o *CatalogOptions) { o.ExcludeTags = append([]ObjRef{}, tags...) }
}

// WithDataset restricts the catalog to one dataset.
func WithDataset(dataset ObjRef) CatalogOption {
	return func(o *CatalogOptions) { o.Dataset = dataset }
}

// WithProduction sets the production flag.
func WithProduction(production bool) CatalogOption {
	return func(o *CatalogOptions) { o.Production = &production }
}

// WithoutGroups skips loading catalog groups.
func WithoutGroups() CatalogOption {
	return func(o *CatalogOptions) { o.SkipGroups = true }
}

// Clone returns a deep copy of o.
func (o CatalogOptions) Clone() CatalogOptions {
	out := o
	out.Types = append([]CatalogItemType(nil), o.Types...)
	out.IncludeTags = append([]ObjRef(nil), o.IncludeTags...)
	out.ExcludeTags = append([]ObjRef(nil), o.ExcludeTags...)
	if o.Production != nil {
		p := *o.Production
		out.Production = &p
	}
	return out
}

// Apply returns a copy of o with opts applied in order. o is not modified.
func (o CatalogOptions) Apply(opts ...CatalogOption) CatalogOptions {
	out := o.Clone()
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// Equal reports whether o and other select the same catalog. Item types and
// tags compare in order; nil and empty lists are equal.
func (o CatalogOptions) Equal(other CatalogOptions) bool {
	if len(o.Types) != len(other.Types) || o.SkipGroups != other.SkipGroups {
		return false
	}
	for i := range o.Types {
		if o.Types[i] != other.Types[i] {
			return false
		}
	}
	if !refListsEqual(o.IncludeTags, other.IncludeTags) || !refListsEqual(o.ExcludeTags, other.ExcludeTags) {
		return false
	}
	if (o.Dataset == nil) != (other.Dataset == nil) || (o.Dataset != nil && !RefsEqual(o.Dataset, other.Dataset)) {
		return false
	}
	if (o.Production == nil) != (other.Production == nil) {
		return false
	}
	return o.Production == nil || *o.Production == *other.Production
}

func refListsEqual(a, b []ObjRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !RefsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// AvailabilityOptions select the items an availability query is computed for,
// in addition to the catalog filters. Exactly one of Items or Insight is set.
type AvailabilityOptions struct {
	CatalogOptions
	Items   []AttributeOrMeasure
	Insight *Insight
}

// Clone returns a deep copy of o.
func (o AvailabilityOptions) Clone() AvailabilityOptions {
	out := AvailabilityOptions{CatalogOptions: o.CatalogOptions.Clone()}
	out.Items = CloneItems(o.Items)
	if o.Insight != nil {
		in := o.Insight.Clone()
		out.Insight = &in
	}
	return out
}

// WithItems returns a copy of o computing availability for items.
// Any insight is dropped.
func (o AvailabilityOptions) WithItems(items ...AttributeOrMeasure) AvailabilityOptions {
	out := o.Clone()
	out.Items = CloneItems(items)
	out.Insight = nil
	return out
}

// WithInsight returns a copy of o computing availability for the insight.
// Any items are dropped.
func (o AvailabilityOptions) WithInsight(insight Insight) AvailabilityOptions {
	out := o.Clone()
	in := insight.Clone()
	out.Items = nil
	out.Insight = &in
	return out
}

// Validate checks that exactly one item source is present.
func (o AvailabilityOptions) Validate() error {
	hasItems := len(o.Items) > 0
	hasInsight := o.Insight != nil
	switch {
	case !hasItems && !hasInsight:
		return ErrNoItemsOrInsight
	case hasItems && hasInsight:
		return ErrItemsAndInsight
	}
	return nil
}

// RelevantItems returns the items availability is computed for.
func (o AvailabilityOptions) RelevantItems() []AttributeOrMeasure {
	if len(o.Items) > 0 {
		return o.Items
	}
	if o.Insight != nil {
		return o.Insight.Items()
	}
	return nil
}
