package types

// Measure aggregations understood by the backend.
const (
	AggregationSum    = "sum"
	AggregationCount  = "count"
	AggregationAvg    = "avg"
	AggregationMin    = "min"
	AggregationMax    = "max"
	AggregationMedian = "median"
	AggregationRunSum = "runsum"
)

// AttributeOrMeasure is an item placed into an insight bucket. The set of
// implementations is closed; every variant implements Accept so that a new
// variant must be added to ItemVisitor, which breaks every visitor at compile
// time until it handles the new case.
type AttributeOrMeasure interface {
	// LocalID returns the identifier of the item, unique within one query.
	LocalID() string

	// Accept dispatches to the visitor method for the concrete variant.
	Accept(v ItemVisitor) error

	attributeOrMeasure()
}

// ItemVisitor handles each AttributeOrMeasure variant.
type ItemVisitor interface {
	VisitAttribute(Attribute) error
	VisitSimpleMeasure(SimpleMeasure) error
	VisitArithmeticMeasure(ArithmeticMeasure) error
	VisitPoPMeasure(PoPMeasure) error
	VisitPreviousPeriodMeasure(PreviousPeriodMeasure) error
}

// Attribute slices data by the values of one display form.
type Attribute struct {
	LocalIdentifier string
	DisplayForm     ObjRef
	Alias           string
}

// MeasureFilter restricts a simple measure to (or away from) attribute elements.
type MeasureFilter struct {
	DisplayForm ObjRef
	Elements    []string
	Negative    bool
}

// SimpleMeasure computes a metric, or aggregates a fact or attribute.
type SimpleMeasure struct {
	LocalIdentifier string
	Item            ObjRef
	Aggregation     string
	Title           string
	Filters         []MeasureFilter
}

// ArithmeticMeasure combines other measures of the same query.
type ArithmeticMeasure struct {
	LocalIdentifier string
	Operator        string
	Operands        []string
}

// PoPMeasure shifts its master measure to the same period previous year,
// using PopAttribute as the date attribute.
type PoPMeasure struct {
	LocalIdentifier string
	MasterLocalID   string
	PopAttribute    ObjRef
}

// PreviousPeriodDateDataSet selects how many periods a date dataset is shifted.
type PreviousPeriodDateDataSet struct {
	DataSet    ObjRef
	PeriodsAgo int
}

// PreviousPeriodMeasure shifts its master measure by whole periods.
type PreviousPeriodMeasure struct {
	LocalIdentifier string
	MasterLocalID   string
	DateDataSets    []PreviousPeriodDateDataSet
}

func (Attribute) attributeOrMeasure()             {}
func (SimpleMeasure) attributeOrMeasure()         {}
func (ArithmeticMeasure) attributeOrMeasure()     {}
func (PoPMeasure) attributeOrMeasure()            {}
func (PreviousPeriodMeasure) attributeOrMeasure() {}

func (a Attribute) LocalID() string             { return a.LocalIdentifier }
func (m SimpleMeasure) LocalID() string         { return m.LocalIdentifier }
func (m ArithmeticMeasure) LocalID() string     { return m.LocalIdentifier }
func (m PoPMeasure) LocalID() string            { return m.LocalIdentifier }
func (m PreviousPeriodMeasure) LocalID() string { return m.LocalIdentifier }

func (a Attribute) Accept(v ItemVisitor) error             { return v.VisitAttribute(a) }
func (m SimpleMeasure) Accept(v ItemVisitor) error         { return v.VisitSimpleMeasure(m) }
func (m ArithmeticMeasure) Accept(v ItemVisitor) error     { return v.VisitArithmeticMeasure(m) }
func (m PoPMeasure) Accept(v ItemVisitor) error            { return v.VisitPoPMeasure(m) }
func (m PreviousPeriodMeasure) Accept(v ItemVisitor) error { return v.VisitPreviousPeriodMeasure(m) }

// WithDisplayForm returns a copy of the attribute addressing ref.
func (a Attribute) WithDisplayForm(ref ObjRef) Attribute {
	a.DisplayForm = ref
	return a
}

// WithItem returns a copy of the measure computing ref.
func (m SimpleMeasure) WithItem(ref ObjRef) SimpleMeasure {
	m = m.clone()
	m.Item = ref
	return m
}

// WithPopAttribute returns a copy of the measure shifted along ref.
func (m PoPMeasure) WithPopAttribute(ref ObjRef) PoPMeasure {
	m.PopAttribute = ref
	return m
}

func (m SimpleMeasure) clone() SimpleMeasure {
	if m.Filters == nil {
		return m
	}
	filters := make([]MeasureFilter, len(m.Filters))
	for i, f := range m.Filters {
		f.Elements = append([]string(nil), f.Elements...)
		filters[i] = f
	}
	m.Filters = filters
	return m
}

// IsMeasure reports whether item is any measure variant.
func IsMeasure(item AttributeOrMeasure) bool {
	switch item.(type) {
	case SimpleMeasure, ArithmeticMeasure, PoPMeasure, PreviousPeriodMeasure:
		return true
	}
	return false
}

// MasterLocalID returns the master measure of a derived measure.
// The second result is false for every other variant.
func MasterLocalID(item AttributeOrMeasure) (string, bool) {
	switch m := item.(type) {
	case PoPMeasure:
		return m.MasterLocalID, true
	case PreviousPeriodMeasure:
		return m.MasterLocalID, true
	}
	return "", false
}

// CloneItems returns a deep copy of items. Variants holding slices get fresh
// backing arrays so the copy can be handed to another goroutine.
func CloneItems(items []AttributeOrMeasure) []AttributeOrMeasure {
	if items == nil {
		return nil
	}
	out := make([]AttributeOrMeasure, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case SimpleMeasure:
			out[i] = v.clone()
		case ArithmeticMeasure:
			v.Operands = append([]string(nil), v.Operands...)
			out[i] = v
		case PreviousPeriodMeasure:
			v.DateDataSets = append([]PreviousPeriodDateDataSet(nil), v.DateDataSets...)
			out[i] = v
		default:
			out[i] = item
		}
	}
	return out
}
