package convert

import (
	"fmt"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// Ref converts an object reference to its wire qualifier.
func Ref(ref types.ObjRef) (bear.Ref, error) {
	switch r := ref.(type) {
	case types.URIRef:
		return bear.Ref{URI: r.URI}, nil
	case types.IdentifierRef:
		return bear.Ref{Identifier: r.Identifier}, nil
	}
	return bear.Ref{}, types.ErrInvalidRef
}

// ObjRef converts a wire qualifier. A URI wins when both forms are present.
func ObjRef(ref bear.Ref, objectType string) (types.ObjRef, error) {
	switch {
	case ref.URI != "":
		return types.URIRefOf(ref.URI), nil
	case ref.Identifier != "":
		return types.IDRef(ref.Identifier, objectType), nil
	}
	return nil, types.ErrInvalidRef
}

// VisualizationObject converts buckets into the wire form sent with
// availability requests.
func VisualizationObject(buckets []types.Bucket) (*bear.VisualizationObjectContent, error) {
	content := &bear.VisualizationObjectContent{Buckets: make([]bear.VisualizationBucket, 0, len(buckets))}
	for _, bucket := range buckets {
		out := bear.VisualizationBucket{
			LocalIdentifier: bucket.LocalIdentifier,
			Items:           make([]bear.BucketItem, 0, len(bucket.Items)),
		}
		for _, item := range bucket.Items {
			if item == nil {
				return nil, &types.InvariantError{Op: "convert bucket item", Detail: "nil item in bucket " + bucket.LocalIdentifier}
			}
			var b bucketItemBuilder
			if err := item.Accept(&b); err != nil {
				return nil, fmt.Errorf("convert bucket item %q: %w", item.LocalID(), err)
			}
			out.Items = append(out.Items, b.out)
		}
		content.Buckets = append(content.Buckets, out)
	}
	return content, nil
}

// InsightVisualizationObject converts a whole insight, visualization class included.
func InsightVisualizationObject(insight types.Insight) (*bear.VisualizationObjectContent, error) {
	content, err := VisualizationObject(insight.Buckets)
	if err != nil {
		return nil, err
	}
	if insight.VisualizationClass != nil {
		if content.VisualizationClass, err = Ref(insight.VisualizationClass); err != nil {
			return nil, fmt.Errorf("convert visualization class: %w", err)
		}
	}
	return content, nil
}

// bucketItemBuilder renders one bucket item in wire form.
type bucketItemBuilder struct {
	out bear.BucketItem
}

func (b *bucketItemBuilder) VisitAttribute(a types.Attribute) error {
	df, err := Ref(a.DisplayForm)
	if err != nil {
		return err
	}
	b.out.VisualizationAttribute = &bear.VisualizationAttribute{
		LocalIdentifier: a.LocalIdentifier,
		DisplayForm:     df,
		Alias:           a.Alias,
	}
	return nil
}

func (b *bucketItemBuilder) VisitSimpleMeasure(m types.SimpleMeasure) error {
	item, err := Ref(m.Item)
	if err != nil {
		return err
	}
	def := &bear.SimpleMeasureDefinition{Item: item, Aggregation: m.Aggregation}
	for _, f := range m.Filters {
		df, err := Ref(f.DisplayForm)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		elements := append([]string{}, f.Elements...)
		if f.Negative {
			def.Filters = append(def.Filters, bear.MeasureFilter{
				NegativeAttributeFilter: &bear.NegativeAttributeFilter{DisplayForm: df, NotIn: elements},
			})
		} else {
			def.Filters = append(def.Filters, bear.MeasureFilter{
				PositiveAttributeFilter: &bear.PositiveAttributeFilter{DisplayForm: df, In: elements},
			})
		}
	}
	b.out.Measure = &bear.Measure{
		LocalIdentifier: m.LocalIdentifier,
		Title:           m.Title,
		Definition:      bear.MeasureDefinition{MeasureDefinition: def},
	}
	return nil
}

func (b *bucketItemBuilder) VisitArithmeticMeasure(m types.ArithmeticMeasure) error {
	b.out.Measure = &bear.Measure{
		LocalIdentifier: m.LocalIdentifier,
		Definition: bear.MeasureDefinition{ArithmeticMeasure: &bear.ArithmeticMeasureDefinition{
			MeasureIdentifiers: append([]string{}, m.Operands...),
			Operator:           m.Operator,
		}},
	}
	return nil
}

func (b *bucketItemBuilder) VisitPoPMeasure(m types.PoPMeasure) error {
	attr, err := Ref(m.PopAttribute)
	if err != nil {
		return err
	}
	b.out.Measure = &bear.Measure{
		LocalIdentifier: m.LocalIdentifier,
		Definition: bear.MeasureDefinition{PopMeasureDefinition: &bear.PopMeasureDefinition{
			MeasureIdentifier: m.MasterLocalID,
			PopAttribute:      attr,
		}},
	}
	return nil
}

func (b *bucketItemBuilder) VisitPreviousPeriodMeasure(m types.PreviousPeriodMeasure) error {
	def := &bear.PreviousPeriodMeasureDefinition{
		MeasureIdentifier: m.MasterLocalID,
		DateDataSets:      make([]bear.PreviousPeriodDateDataSet, 0, len(m.DateDataSets)),
	}
	for _, ds := range m.DateDataSets {
		ref, err := Ref(ds.DataSet)
		if err != nil {
			return err
		}
		def.DateDataSets = append(def.DateDataSets, bear.PreviousPeriodDateDataSet{DataSet: ref, PeriodsAgo: ds.PeriodsAgo})
	}
	b.out.Measure = &bear.Measure{
		LocalIdentifier: m.LocalIdentifier,
		Definition:      bear.MeasureDefinition{PreviousPeriodMeasure: def},
	}
	return nil
}

// Buckets converts wire buckets into the model.
func Buckets(content bear.VisualizationObjectContent) ([]types.Bucket, error) {
	out := make([]types.Bucket, 0, len(content.Buckets))
	for _, bucket := range content.Buckets {
		b := types.Bucket{LocalIdentifier: bucket.LocalIdentifier}
		for n, item := range bucket.Items {
			converted, err := bucketItem(item)
			if err != nil {
				return nil, fmt.Errorf("bucket %q item %d: %w", bucket.LocalIdentifier, n, err)
			}
			b.Items = append(b.Items, converted)
		}
		out = append(out, b)
	}
	return out, nil
}

// Insight converts a visualization object into an insight.
func Insight(title string, content bear.VisualizationObjectContent) (types.Insight, error) {
	buckets, err := Buckets(content)
	if err != nil {
		return types.Insight{}, err
	}
	insight := types.Insight{Title: title, Buckets: buckets}
	if content.VisualizationClass != (bear.Ref{}) {
		if insight.VisualizationClass, err = ObjRef(content.VisualizationClass, "visualizationClass"); err != nil {
			return types.Insight{}, err
		}
	}
	return insight, nil
}

func bucketItem(item bear.BucketItem) (types.AttributeOrMeasure, error) {
	switch {
	case item.VisualizationAttribute != nil:
		a := item.VisualizationAttribute
		df, err := ObjRef(a.DisplayForm, types.ObjectTypeDisplayForm)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.LocalIdentifier, err)
		}
		return types.Attribute{LocalIdentifier: a.LocalIdentifier, DisplayForm: df, Alias: a.Alias}, nil
	case item.Measure != nil:
		return measure(*item.Measure)
	}
	return nil, fmt.Errorf("%w: bucket item has neither measure nor attribute", types.ErrInvalidInput)
}

func measure(m bear.Measure) (types.AttributeOrMeasure, error) {
	def := m.Definition
	switch {
	case def.MeasureDefinition != nil:
		item, err := ObjRef(def.MeasureDefinition.Item, types.ObjectTypeMeasure)
		if err != nil {
			return nil, fmt.Errorf("measure %q: %w", m.LocalIdentifier, err)
		}
		out := types.SimpleMeasure{
			LocalIdentifier: m.LocalIdentifier,
			Item:            item,
			Aggregation:     def.MeasureDefinition.Aggregation,
			Title:           m.Title,
		}
		for _, f := range def.MeasureDefinition.Filters {
			filter, err := measureFilter(f)
			if err != nil {
				return nil, fmt.Errorf("measure %q: %w", m.LocalIdentifier, err)
			}
			out.Filters = append(out.Filters, filter)
		}
		return out, nil
	case def.PopMeasureDefinition != nil:
		attr, err := ObjRef(def.PopMeasureDefinition.PopAttribute, types.ObjectTypeAttribute)
		if err != nil {
			return nil, fmt.Errorf("measure %q: %w", m.LocalIdentifier, err)
		}
		return types.PoPMeasure{
			LocalIdentifier: m.LocalIdentifier,
			MasterLocalID:   def.PopMeasureDefinition.MeasureIdentifier,
			PopAttribute:    attr,
		}, nil
	case def.PreviousPeriodMeasure != nil:
		out := types.PreviousPeriodMeasure{
			LocalIdentifier: m.LocalIdentifier,
			MasterLocalID:   def.PreviousPeriodMeasure.MeasureIdentifier,
		}
		for _, ds := range def.PreviousPeriodMeasure.DateDataSets {
			ref, err := ObjRef(ds.DataSet, types.ObjectTypeDataSet)
			if err != nil {
				return nil, fmt.Errorf("measure %q: %w", m.LocalIdentifier, err)
			}
			out.DateDataSets = append(out.DateDataSets, types.PreviousPeriodDateDataSet{DataSet: ref, PeriodsAgo: ds.PeriodsAgo})
		}
		return out, nil
	case def.ArithmeticMeasure != nil:
		return types.ArithmeticMeasure{
			LocalIdentifier: m.LocalIdentifier,
			Operator:        def.ArithmeticMeasure.Operator,
			Operands:        append([]string{}, def.ArithmeticMeasure.MeasureIdentifiers...),
		}, nil
	}
	return nil, fmt.Errorf("%w: measure %q has no definition", types.ErrInvalidInput, m.LocalIdentifier)
}

func measureFilter(f bear.MeasureFilter) (types.MeasureFilter, error) {
	switch {
	case f.PositiveAttributeFilter != nil:
		df, err := ObjRef(f.PositiveAttributeFilter.DisplayForm, types.ObjectTypeDisplayForm)
		if err != nil {
			return types.MeasureFilter{}, err
		}
		return types.MeasureFilter{DisplayForm: df, Elements: append([]string{}, f.PositiveAttributeFilter.In...)}, nil
	case f.NegativeAttributeFilter != nil:
		df, err := ObjRef(f.NegativeAttributeFilter.DisplayForm, types.ObjectTypeDisplayForm)
		if err != nil {
			return types.MeasureFilter{}, err
		}
		return types.MeasureFilter{DisplayForm: df, Elements: append([]string{}, f.NegativeAttributeFilter.NotIn...), Negative: true}, nil
	}
	return types.MeasureFilter{}, fmt.Errorf("%w: empty measure filter", types.ErrInvalidInput)
}
