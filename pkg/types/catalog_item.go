package types

import "fmt"

// CatalogItemType names one kind of catalog item.
type CatalogItemType string

// Catalog item types.
const (
	CatalogItemAttribute   CatalogItemType = "attribute"
	CatalogItemMeasure     CatalogItemType = "measure"
	CatalogItemFact        CatalogItemType = "fact"
	CatalogItemDateDataset CatalogItemType = "dateDataset"
)

// AllCatalogItemTypes lists every catalog item type in canonical order.
var AllCatalogItemTypes = []CatalogItemType{
	CatalogItemAttribute,
	CatalogItemMeasure,
	CatalogItemFact,
	CatalogItemDateDataset,
}

// ParseCatalogItemType converts s to a CatalogItemType.
// Returns ErrInvalidItemType if s is not a known type.
func ParseCatalogItemType(s string) (CatalogItemType, error) {
	for _, t := range AllCatalogItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
}

// ContainsItemType reports whether types contains t.
func ContainsItemType(types []CatalogItemType, t CatalogItemType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// MetadataObject holds the metadata common to every backend object.
type MetadataObject struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Production  bool   `json:"production,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	Unlisted    bool   `json:"unlisted,omitempty"`
}

// Ref returns a URI reference to the object.
func (m MetadataObject) Ref() ObjRef { return URIRef{URI: m.URI} }

// DisplayForm is an attribute display form (label).
type DisplayForm struct {
	MetadataObject
	AttributeURI string `json:"attributeUri"`
	FormType     string `json:"formType,omitempty"`
}

// CatalogItem is a named, addressable analytical object known to the backend
// metadata layer. The set of implementations is closed: CatalogAttribute,
// CatalogMeasure, CatalogFact and CatalogDateDataset.
type CatalogItem interface {
	// ItemType returns the kind of the item.
	ItemType() CatalogItemType

	// URI returns the backend URI of the main object.
	URI() string

	// Title returns the display title.
	Title() string

	// Groups returns the tag references the item is grouped under.
	Groups() []ObjRef

	catalogItem()
}

// CatalogAttribute is an attribute with its default and geo pin display forms.
type CatalogAttribute struct {
	Attribute          MetadataObject
	DefaultDisplayForm DisplayForm
	GeoPinDisplayForms []DisplayForm
	GroupRefs          []ObjRef
}

// CatalogMeasure is a metric defined in the workspace.
type CatalogMeasure struct {
	Measure    MetadataObject
	Expression string
	Format     string
	GroupRefs  []ObjRef
}

// CatalogFact is a numeric fact.
type CatalogFact struct {
	Fact      MetadataObject
	GroupRefs []ObjRef
}

// CatalogDateAttribute is one granularity of a date dataset.
type CatalogDateAttribute struct {
	Granularity        string
	Attribute          MetadataObject
	DefaultDisplayForm DisplayForm
}

// CatalogDateDataset is a date dimension with its available granularities.
type CatalogDateDataset struct {
	DataSet        MetadataObject
	Relevance      int
	DateAttributes []CatalogDateAttribute
}

func (CatalogAttribute) catalogItem()   {}
func (CatalogMeasure) catalogItem()     {}
func (CatalogFact) catalogItem()        {}
func (CatalogDateDataset) catalogItem() {}

func (CatalogAttribute) ItemType() CatalogItemType   { return CatalogItemAttribute }
func (CatalogMeasure) ItemType() CatalogItemType     { return CatalogItemMeasure }
func (CatalogFact) ItemType() CatalogItemType        { return CatalogItemFact }
func (CatalogDateDataset) ItemType() CatalogItemType { return CatalogItemDateDataset }

func (a CatalogAttribute) URI() string   { return a.Attribute.URI }
func (m CatalogMeasure) URI() string     { return m.Measure.URI }
func (f CatalogFact) URI() string        { return f.Fact.URI }
func (d CatalogDateDataset) URI() string { return d.DataSet.URI }

func (a CatalogAttribute) Title() string   { return a.Attribute.Title }
func (m CatalogMeasure) Title() string     { return m.Measure.Title }
func (f CatalogFact) Title() string        { return f.Fact.Title }
func (d CatalogDateDataset) Title() string { return d.DataSet.Title }

func (a CatalogAttribute) Groups() []ObjRef { return a.GroupRefs }
func (m CatalogMeasure) Groups() []ObjRef   { return m.GroupRefs }
func (f CatalogFact) Groups() []ObjRef      { return f.GroupRefs }
func (CatalogDateDataset) Groups() []ObjRef { return nil }

// WithUnlisted returns a copy of the measure with the unlisted flag set.
func (m CatalogMeasure) WithUnlisted(unlisted bool) CatalogMeasure {
	m.Measure.Unlisted = unlisted
	m.GroupRefs = append([]ObjRef(nil), m.GroupRefs...)
	return m
}

// CatalogGroup is a tag under which catalog items are grouped.
type CatalogGroup struct {
	Title string
	Tag   ObjRef
}

// ItemsOfType returns the items of the concrete type T, in order.
func ItemsOfType[T CatalogItem](items []CatalogItem) []T {
	var out []T
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
