package types

// Insight is a saved visualization: a visualization class and its buckets.
type Insight struct {
	Title              string
	VisualizationClass ObjRef
	Buckets            []Bucket
}

// Bucket groups items that play the same role in an insight.
type Bucket struct {
	LocalIdentifier string
	Items           []AttributeOrMeasure
}

// Items returns all bucket items in bucket order.
func (i Insight) Items() []AttributeOrMeasure {
	var out []AttributeOrMeasure
	for _, b := range i.Buckets {
		out = append(out, b.Items...)
	}
	return out
}

// Clone returns a deep copy of the insight.
func (i Insight) Clone() Insight {
	out := Insight{Title: i.Title, VisualizationClass: i.VisualizationClass}
	if i.Buckets != nil {
		out.Buckets = make([]Bucket, len(i.Buckets))
		for n, b := range i.Buckets {
			out.Buckets[n] = Bucket{LocalIdentifier: b.LocalIdentifier, Items: CloneItems(b.Items)}
		}
	}
	return out
}
