package bear

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Backend catalog item types.
const (
	ItemTypeAttribute = "attribute"
	ItemTypeMetric    = "metric"
	ItemTypeFact      = "fact"
)

// Metadata object categories.
const (
	CategoryAttribute   = "attribute"
	CategoryDisplayForm = "attributeDisplayForm"
	CategoryMetric      = "metric"
	CategoryFact        = "fact"
)

// Flag decodes the backend's mixed boolean encodings: true/false, 0/1 and "0"/"1".
type Flag bool

// UnmarshalJSON accepts booleans, numbers and numeric strings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	switch s {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("bear: invalid flag %s", data)
	}
	return nil
}

// Meta is the metadata header of every backend object.
type Meta struct {
	Identifier string `json:"identifier"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	Summary    string `json:"summary,omitempty"`
	Category   string `json:"category,omitempty"`
	Production Flag   `json:"production,omitempty"`
	Deprecated Flag   `json:"deprecated,omitempty"`
	Unlisted   Flag   `json:"unlisted,omitempty"`
}

// CatalogItemLinks holds the URIs of a catalog item.
type CatalogItemLinks struct {
	Self               string   `json:"self"`
	DefaultDisplayForm string   `json:"defaultDisplayForm,omitempty"`
	GeoPinDisplayForms []string `json:"geoPinDisplayForms,omitempty"`
}

// CatalogItem is one entry of a loadCatalog response.
type CatalogItem struct {
	Type       string           `json:"type"`
	Title      string           `json:"title"`
	Summary    string           `json:"summary,omitempty"`
	Identifier string           `json:"identifier"`
	Production Flag             `json:"production,omitempty"`
	Groups     []string         `json:"groups,omitempty"`
	Links      CatalogItemLinks `json:"links"`
	Expression string           `json:"expression,omitempty"`
	Format     string           `json:"format,omitempty"`
}

// RequiredDataSets selects which date datasets the backend considers.
type RequiredDataSets struct {
	Type              string   `json:"type"`
	CustomIdentifiers []string `json:"customIdentifiers,omitempty"`
}

// Required dataset selection types.
const (
	RequiredDataSetsProduction = "PRODUCTION"
	RequiredDataSetsAll        = "ALL"
	RequiredDataSetsCustom     = "CUSTOM"
)

// Paging is the paging window of a paged request or response.
type Paging struct {
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Next   string `json:"next,omitempty"`
}

// CatalogRequest is the body of loadCatalog.
type CatalogRequest struct {
	Types            []string          `json:"types,omitempty"`
	Paging           Paging            `json:"paging"`
	BucketItems      []string          `json:"bucketItems,omitempty"`
	IncludeWithTags  []string          `json:"includeWithTags,omitempty"`
	ExcludeWithTags  []string          `json:"excludeWithTags,omitempty"`
	Production       *int              `json:"production,omitempty"`
	CSVDataSets      []string          `json:"csvDataSets,omitempty"`
	RequiredDataSets *RequiredDataSets `json:"requiredDataSets,omitempty"`
}

type catalogRequestEnvelope struct {
	CatalogRequest CatalogRequest `json:"catalogRequest"`
}

// CatalogResponse is the body of a loadCatalog response.
type CatalogResponse struct {
	Catalog []CatalogItem `json:"catalog"`
	Totals  struct {
		Available int `json:"available"`
	} `json:"totals"`
	Paging Paging `json:"paging"`
}

type catalogResponseEnvelope struct {
	CatalogResponse CatalogResponse `json:"catalogResponse"`
}

// CatalogGroup is one entry of a loadGroups response.
type CatalogGroup struct {
	Title      string `json:"title"`
	Identifier string `json:"identifier"`
}

// GroupsRequest is the body of loadGroups.
type GroupsRequest struct {
	IncludeWithTags []string `json:"includeWithTags,omitempty"`
	ExcludeWithTags []string `json:"excludeWithTags,omitempty"`
	Production      *int     `json:"production,omitempty"`
	CSVDataSets     []string `json:"csvDataSets,omitempty"`
}

type groupsRequestEnvelope struct {
	CatalogGroupsRequest GroupsRequest `json:"catalogGroupsRequest"`
}

type groupsResponseEnvelope struct {
	CatalogGroupsResponse struct {
		CatalogGroups []CatalogGroup `json:"catalogGroups"`
	} `json:"catalogGroupsResponse"`
}

// DateDataSetAttribute is one granularity of a date dataset.
type DateDataSetAttribute struct {
	AttributeMeta          Meta   `json:"attributeMeta"`
	DefaultDisplayFormMeta Meta   `json:"defaultDisplayFormMeta"`
	Type                   string `json:"type"`
}

// DateDataSet is one entry of a loadDateDataSets response.
type DateDataSet struct {
	Relevance               int                    `json:"relevance"`
	AvailableDateAttributes []DateDataSetAttribute `json:"availableDateAttributes,omitempty"`
	Meta                    Meta                   `json:"meta"`
}

// DateDataSetsRequest is the body of loadDateDataSets.
type DateDataSetsRequest struct {
	BucketItems                         []string          `json:"bucketItems,omitempty"`
	IncludeAvailableDateAttributes      bool              `json:"includeAvailableDateAttributes"`
	IncludeUnavailableDateDataSetsCount bool              `json:"includeUnavailableDateDataSetsCount"`
	RequiredDataSets                    *RequiredDataSets `json:"requiredDataSets,omitempty"`
	ExcludeObjectsWithTags              []string          `json:"excludeObjectsWithTags,omitempty"`
	IncludeObjectsWithTags              []string          `json:"includeObjectsWithTags,omitempty"`
}

type dateDataSetsRequestEnvelope struct {
	DateDataSetsRequest DateDataSetsRequest `json:"dateDataSetsRequest"`
}

// DateDataSetsResponse is the body of a loadDateDataSets response.
type DateDataSetsResponse struct {
	DateDataSets                 []DateDataSet `json:"dateDataSets"`
	UnavailableDateDataSetsCount int           `json:"unavailableDateDataSetsCount"`
}

type dateDataSetsResponseEnvelope struct {
	DateDataSetsResponse DateDataSetsResponse `json:"dateDataSetsResponse"`
}

// DisplayFormContent is the content of an attribute display form.
type DisplayFormContent struct {
	FormOf string `json:"formOf"`
	Type   string `json:"type,omitempty"`
}

// DisplayFormObject is an attribute display form.
type DisplayFormObject struct {
	Meta    Meta               `json:"meta"`
	Content DisplayFormContent `json:"content"`
}

// AttributeObject is an attribute with its display forms.
type AttributeObject struct {
	Meta    Meta `json:"meta"`
	Content struct {
		DisplayForms []DisplayFormObject `json:"displayForms,omitempty"`
	} `json:"content"`
}

// MetricObject is a metric with its MAQL definition.
type MetricObject struct {
	Meta    Meta `json:"meta"`
	Content struct {
		Expression string `json:"expression"`
		Format     string `json:"format,omitempty"`
	} `json:"content"`
}

// FactObject is a fact.
type FactObject struct {
	Meta Meta `json:"meta"`
}

// WrappedObject is a metadata object keyed by its category. Exactly one field is set.
type WrappedObject struct {
	Attribute            *AttributeObject   `json:"attribute,omitempty"`
	AttributeDisplayForm *DisplayFormObject `json:"attributeDisplayForm,omitempty"`
	Metric               *MetricObject      `json:"metric,omitempty"`
	Fact                 *FactObject        `json:"fact,omitempty"`
}

// Meta returns the metadata header of the wrapped object and its category.
func (w WrappedObject) Meta() (Meta, string) {
	switch {
	case w.Attribute != nil:
		return w.Attribute.Meta, CategoryAttribute
	case w.AttributeDisplayForm != nil:
		return w.AttributeDisplayForm.Meta, CategoryDisplayForm
	case w.Metric != nil:
		return w.Metric.Meta, CategoryMetric
	case w.Fact != nil:
		return w.Fact.Meta, CategoryFact
	}
	return Meta{}, ""
}

type objectsGetRequest struct {
	Get struct {
		Items []string `json:"items"`
	} `json:"get"`
}

type objectsResponse struct {
	Objects struct {
		Items  []WrappedObject `json:"items"`
		Paging struct {
			Offset     int    `json:"offset"`
			Count      int    `json:"count"`
			TotalCount int    `json:"totalCount"`
			Next       string `json:"next,omitempty"`
		} `json:"paging"`
	} `json:"objects"`
}

// IdentifierURIPair maps an identifier to its URI.
type IdentifierURIPair struct {
	Identifier string `json:"identifier"`
	URI        string `json:"uri"`
}

type identifiersRequest struct {
	URIToIdentifier []string `json:"uriToIdentifier,omitempty"`
	IdentifierToURI []string `json:"identifierToUri,omitempty"`
}

type identifiersResponse struct {
	Identifiers []IdentifierURIPair `json:"identifiers"`
}

// Ref is an object qualifier in the visualization object: {"uri": ...} or {"identifier": ...}.
type Ref struct {
	URI        string `json:"uri,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// VisualizationObjectContent is the wire form of an insight.
type VisualizationObjectContent struct {
	VisualizationClass Ref                   `json:"visualizationClass"`
	Buckets            []VisualizationBucket `json:"buckets"`
	Filters            []json.RawMessage     `json:"filters,omitempty"`
}

// VisualizationBucket groups bucket items.
type VisualizationBucket struct {
	LocalIdentifier string       `json:"localIdentifier,omitempty"`
	Items           []BucketItem `json:"items"`
}

// BucketItem holds exactly one of Measure or VisualizationAttribute.
type BucketItem struct {
	Measure                *Measure                `json:"measure,omitempty"`
	VisualizationAttribute *VisualizationAttribute `json:"visualizationAttribute,omitempty"`
}

// VisualizationAttribute is an attribute bucket item.
type VisualizationAttribute struct {
	LocalIdentifier string `json:"localIdentifier"`
	DisplayForm     Ref    `json:"displayForm"`
	Alias           string `json:"alias,omitempty"`
}

// Measure is a measure bucket item.
type Measure struct {
	LocalIdentifier string            `json:"localIdentifier"`
	Title           string            `json:"title,omitempty"`
	Alias           string            `json:"alias,omitempty"`
	Definition      MeasureDefinition `json:"definition"`
}

// MeasureDefinition holds exactly one definition kind.
type MeasureDefinition struct {
	MeasureDefinition     *SimpleMeasureDefinition         `json:"measureDefinition,omitempty"`
	PopMeasureDefinition  *PopMeasureDefinition            `json:"popMeasureDefinition,omitempty"`
	PreviousPeriodMeasure *PreviousPeriodMeasureDefinition `json:"previousPeriodMeasure,omitempty"`
	ArithmeticMeasure     *ArithmeticMeasureDefinition     `json:"arithmeticMeasure,omitempty"`
}

// SimpleMeasureDefinition computes or aggregates one object.
type SimpleMeasureDefinition struct {
	Item        Ref             `json:"item"`
	Aggregation string          `json:"aggregation,omitempty"`
	Filters     []MeasureFilter `json:"filters,omitempty"`
}

// MeasureFilter holds exactly one attribute filter.
type MeasureFilter struct {
	PositiveAttributeFilter *PositiveAttributeFilter `json:"positiveAttributeFilter,omitempty"`
	NegativeAttributeFilter *NegativeAttributeFilter `json:"negativeAttributeFilter,omitempty"`
}

// PositiveAttributeFilter keeps the listed elements.
type PositiveAttributeFilter struct {
	DisplayForm Ref      `json:"displayForm"`
	In          []string `json:"in"`
}

// NegativeAttributeFilter drops the listed elements.
type NegativeAttributeFilter struct {
	DisplayForm Ref      `json:"displayForm"`
	NotIn       []string `json:"notIn"`
}

// PopMeasureDefinition shifts a master measure one year back.
type PopMeasureDefinition struct {
	MeasureIdentifier string `json:"measureIdentifier"`
	PopAttribute      Ref    `json:"popAttribute"`
}

// PreviousPeriodDateDataSet selects the shift of one date dataset.
type PreviousPeriodDateDataSet struct {
	DataSet    Ref `json:"dataSet"`
	PeriodsAgo int `json:"periodsAgo"`
}

// PreviousPeriodMeasureDefinition shifts a master measure by whole periods.
type PreviousPeriodMeasureDefinition struct {
	MeasureIdentifier string                      `json:"measureIdentifier"`
	DateDataSets      []PreviousPeriodDateDataSet `json:"dateDataSets"`
}

// ArithmeticMeasureDefinition combines measures of the same insight.
type ArithmeticMeasureDefinition struct {
	MeasureIdentifiers []string `json:"measureIdentifiers"`
	Operator           string   `json:"operator"`
}
