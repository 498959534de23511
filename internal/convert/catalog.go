package convert

import (
	"fmt"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// Metadata converts an object header.
func Metadata(m bear.Meta) types.MetadataObject {
	return types.MetadataObject{
		ID:          m.Identifier,
		URI:         m.URI,
		Title:       m.Title,
		Description: m.Summary,
		Production:  bool(m.Production),
		Deprecated:  bool(m.Deprecated),
		Unlisted:    bool(m.Unlisted),
	}
}

// DisplayForm converts an attribute display form.
func DisplayForm(df bear.DisplayFormObject) types.DisplayForm {
	return types.DisplayForm{
		MetadataObject: Metadata(df.Meta),
		AttributeURI:   df.Content.FormOf,
		FormType:       df.Content.Type,
	}
}

// Group converts a catalog group. The group tag is addressed by identifier.
func Group(g bear.CatalogGroup) types.CatalogGroup {
	return types.CatalogGroup{
		Title: g.Title,
		Tag:   types.IDRef(g.Identifier, types.ObjectTypeTag),
	}
}

// Groups converts catalog groups, keeping their order.
func Groups(groups []bear.CatalogGroup) []types.CatalogGroup {
	out := make([]types.CatalogGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group(g))
	}
	return out
}

// Metric converts a metric object into a catalog measure.
func Metric(m bear.MetricObject) types.CatalogMeasure {
	return types.CatalogMeasure{
		Measure:    Metadata(m.Meta),
		Expression: m.Content.Expression,
		Format:     m.Content.Format,
	}
}

// DateDataset converts a date dataset with its granularities.
func DateDataset(ds bear.DateDataSet) types.CatalogDateDataset {
	out := types.CatalogDateDataset{
		DataSet:   Metadata(ds.Meta),
		Relevance: ds.Relevance,
	}
	for _, attr := range ds.AvailableDateAttributes {
		out.DateAttributes = append(out.DateAttributes, types.CatalogDateAttribute{
			Granularity: attr.Type,
			Attribute:   Metadata(attr.AttributeMeta),
			DefaultDisplayForm: types.DisplayForm{
				MetadataObject: Metadata(attr.DefaultDisplayFormMeta),
				AttributeURI:   attr.AttributeMeta.URI,
			},
		})
	}
	return out
}

// CatalogItem converts a loadCatalog entry. Attribute display forms are
// looked up by URI in displayForms; a form missing there keeps only its URI.
func CatalogItem(item bear.CatalogItem, displayForms map[string]types.DisplayForm) (types.CatalogItem, error) {
	meta := types.MetadataObject{
		ID:          item.Identifier,
		URI:         item.Links.Self,
		Title:       item.Title,
		Description: item.Summary,
		Production:  bool(item.Production),
	}
	groups := groupRefs(item.Groups)

	switch item.Type {
	case bear.ItemTypeAttribute:
		attr := types.CatalogAttribute{
			Attribute:          meta,
			DefaultDisplayForm: lookupDisplayForm(item.Links.DefaultDisplayForm, item.Links.Self, displayForms),
			GroupRefs:          groups,
		}
		for _, uri := range item.Links.GeoPinDisplayForms {
			attr.GeoPinDisplayForms = append(attr.GeoPinDisplayForms, lookupDisplayForm(uri, item.Links.Self, displayForms))
		}
		return attr, nil
	case bear.ItemTypeMetric:
		return types.CatalogMeasure{
			Measure:    meta,
			Expression: item.Expression,
			Format:     item.Format,
			GroupRefs:  groups,
		}, nil
	case bear.ItemTypeFact:
		return types.CatalogFact{Fact: meta, GroupRefs: groups}, nil
	}
	return nil, fmt.Errorf("convert catalog item %q: %w: %q", item.Identifier, types.ErrInvalidItemType, item.Type)
}

func lookupDisplayForm(uri, attributeURI string, displayForms map[string]types.DisplayForm) types.DisplayForm {
	if df, ok := displayForms[uri]; ok {
		return df
	}
	return types.DisplayForm{
		MetadataObject: types.MetadataObject{URI: uri},
		AttributeURI:   attributeURI,
	}
}

func groupRefs(identifiers []string) []types.ObjRef {
	if len(identifiers) == 0 {
		return nil
	}
	out := make([]types.ObjRef, len(identifiers))
	for i, id := range identifiers {
		out[i] = types.IDRef(id, types.ObjectTypeTag)
	}
	return out
}
