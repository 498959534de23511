package beartest

import "github.com/mesh-intelligence/catalogue/internal/bear"

// Fixture workspace URIs.
const (
	WorkspaceID = "ws"

	AttrCityURI         = "/gdc/md/ws/obj/1"
	LabelCityURI        = "/gdc/md/ws/obj/2"
	LabelCityGeoURI     = "/gdc/md/ws/obj/3"
	AttrProductURI      = "/gdc/md/ws/obj/4"
	LabelProductURI     = "/gdc/md/ws/obj/5"
	LabelProductCodeURI = "/gdc/md/ws/obj/6"
	MetricRevenueURI    = "/gdc/md/ws/obj/10"
	MetricHiddenURI     = "/gdc/md/ws/obj/11"
	FactAmountURI       = "/gdc/md/ws/obj/20"
	FactQuantityURI     = "/gdc/md/ws/obj/21"
	DataSetCreatedURI   = "/gdc/md/ws/obj/30"
	CreatedYearURI      = "/gdc/md/ws/obj/31"
	CreatedYearLabelURI = "/gdc/md/ws/obj/32"
	DataSetClosedURI    = "/gdc/md/ws/obj/40"
	ClosedYearURI       = "/gdc/md/ws/obj/41"
	ClosedYearLabelURI  = "/gdc/md/ws/obj/42"
	DataSetCSVURI       = "/gdc/md/ws/obj/50"
	TagSalesURI         = "/gdc/md/ws/tags/sales"
)

func meta(id, uri, title, category string) bear.Meta {
	return bear.Meta{Identifier: id, URI: uri, Title: title, Category: category, Production: true}
}

func displayForm(id, uri, title, formOf, formType string) bear.WrappedObject {
	return bear.WrappedObject{AttributeDisplayForm: &bear.DisplayFormObject{
		Meta:    meta(id, uri, title, bear.CategoryDisplayForm),
		Content: bear.DisplayFormContent{FormOf: formOf, Type: formType},
	}}
}

func attribute(id, uri, title string) bear.WrappedObject {
	return bear.WrappedObject{Attribute: &bear.AttributeObject{Meta: meta(id, uri, title, bear.CategoryAttribute)}}
}

// Fixture returns a small sales workspace:
//
//	attributes City (with a geo pin label) and Product (with an extra code
//	label the catalog does not link),
//	metrics Revenue and Hidden (unlisted),
//	facts Amount and Quantity,
//	date datasets Created and Closed,
//	groups Sales and Product.
//
// Product cannot be combined with Amount, Revenue or the Closed date dataset;
// Revenue cannot be combined with Product or Quantity.
func Fixture() Workspace {
	hidden := bear.MetricObject{Meta: meta("metric.hidden", MetricHiddenURI, "Hidden", bear.CategoryMetric)}
	hidden.Meta.Unlisted = true
	hidden.Content.Expression = "SELECT COUNT([" + AttrCityURI + "])"

	revenue := bear.MetricObject{Meta: meta("metric.revenue", MetricRevenueURI, "Revenue", bear.CategoryMetric)}
	revenue.Content.Expression = "SELECT SUM([" + FactAmountURI + "])"
	revenue.Content.Format = "#,##0"

	return Workspace{
		Items: []bear.CatalogItem{
			{
				Type: bear.ItemTypeAttribute, Title: "City", Identifier: "attr.city", Production: true,
				Groups: []string{"tag.sales"},
				Links: bear.CatalogItemLinks{
					Self:               AttrCityURI,
					DefaultDisplayForm: LabelCityURI,
					GeoPinDisplayForms: []string{LabelCityGeoURI},
				},
			},
			{
				Type: bear.ItemTypeAttribute, Title: "Product", Identifier: "attr.product", Production: true,
				Groups: []string{"tag.product"},
				Links:  bear.CatalogItemLinks{Self: AttrProductURI, DefaultDisplayForm: LabelProductURI},
			},
			{
				Type: bear.ItemTypeMetric, Title: "Revenue", Identifier: "metric.revenue", Production: true,
				Groups:     []string{"tag.sales"},
				Links:      bear.CatalogItemLinks{Self: MetricRevenueURI},
				Expression: revenue.Content.Expression, Format: revenue.Content.Format,
			},
			{
				Type: bear.ItemTypeMetric, Title: "Hidden", Identifier: "metric.hidden", Production: true,
				Links:      bear.CatalogItemLinks{Self: MetricHiddenURI},
				Expression: hidden.Content.Expression,
			},
			{
				Type: bear.ItemTypeFact, Title: "Amount", Identifier: "fact.amount", Production: true,
				Groups: []string{"tag.sales"},
				Links:  bear.CatalogItemLinks{Self: FactAmountURI},
			},
			{
				Type: bear.ItemTypeFact, Title: "Quantity", Identifier: "fact.quantity",
				Groups: []string{"tag.product"},
				Links:  bear.CatalogItemLinks{Self: FactQuantityURI},
			},
		},
		Groups: []bear.CatalogGroup{
			{Title: "Sales", Identifier: "tag.sales"},
			{Title: "Product", Identifier: "tag.product"},
		},
		Objects: []bear.WrappedObject{
			attribute("attr.city", AttrCityURI, "City"),
			displayForm("label.city", LabelCityURI, "City", AttrCityURI, ""),
			displayForm("label.city.geo", LabelCityGeoURI, "City Location", AttrCityURI, "GDC.geo.pin"),
			attribute("attr.product", AttrProductURI, "Product"),
			displayForm("label.product", LabelProductURI, "Product", AttrProductURI, ""),
			displayForm("label.product.code", LabelProductCodeURI, "Product Code", AttrProductURI, ""),
			{Metric: &revenue},
			{Metric: &hidden},
			{Fact: &bear.FactObject{Meta: meta("fact.amount", FactAmountURI, "Amount", bear.CategoryFact)}},
			{Fact: &bear.FactObject{Meta: meta("fact.quantity", FactQuantityURI, "Quantity", bear.CategoryFact)}},
		},
		DateDataSets: []bear.DateDataSet{
			{
				Relevance: 1,
				Meta:      meta("dataset.created", DataSetCreatedURI, "Date (Created)", ""),
				AvailableDateAttributes: []bear.DateDataSetAttribute{{
					AttributeMeta:          meta("created.year", CreatedYearURI, "Year (Created)", bear.CategoryAttribute),
					DefaultDisplayFormMeta: meta("created.year.label", CreatedYearLabelURI, "Year (Created)", bear.CategoryDisplayForm),
					Type:                   "GDC.time.year",
				}},
			},
			{
				Meta: meta("dataset.closed", DataSetClosedURI, "Date (Closed)", ""),
				AvailableDateAttributes: []bear.DateDataSetAttribute{{
					AttributeMeta:          meta("closed.year", ClosedYearURI, "Year (Closed)", bear.CategoryAttribute),
					DefaultDisplayFormMeta: meta("closed.year.label", ClosedYearLabelURI, "Year (Closed)", bear.CategoryDisplayForm),
					Type:                   "GDC.time.year",
				}},
			},
		},
		Identifiers: map[string]string{
			DataSetCSVURI: "dataset.csv",
			TagSalesURI:   "tag.sales",
		},
		Incompatible: map[string][]string{
			AttrProductURI:   {FactAmountURI, MetricRevenueURI, DataSetClosedURI},
			MetricRevenueURI: {AttrProductURI, FactQuantityURI},
		},
	}
}
