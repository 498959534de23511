package bear

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// LoadItemDescriptionObjects describes the bucket items of content the way the
// catalog resources expect them: attributes by attribute URI, metrics by URI,
// fact and attribute aggregations and filtered measures as MAQL, and PoP
// measures as their master shifted FOR PREVIOUS the pop attribute. Previous
// period and arithmetic measures are not described; their masters are.
//
// Object categories of measured items and the attributes of display forms
// missing from attributesMap are fetched from the backend in one batch, only
// when content needs them.
func (c *Client) LoadItemDescriptionObjects(
	ctx context.Context,
	workspace string,
	content *VisualizationObjectContent,
	attributesMap map[string]types.MetadataObject,
) ([]string, error) {
	if content == nil {
		return nil, nil
	}

	var (
		lookup  []string
		seen    = map[string]bool{}
		masters = map[string]SimpleMeasureDefinition{}
	)
	need := func(uri string) {
		if !seen[uri] {
			seen[uri] = true
			lookup = append(lookup, uri)
		}
	}
	needDisplayForm := func(ref Ref) {
		if _, ok := attributesMap[ref.URI]; ref.URI != "" && !ok {
			need(ref.URI)
		}
	}
	for _, bucket := range content.Buckets {
		for _, item := range bucket.Items {
			switch {
			case item.VisualizationAttribute != nil:
				needDisplayForm(item.VisualizationAttribute.DisplayForm)
			case item.Measure != nil && item.Measure.Definition.MeasureDefinition != nil:
				def := item.Measure.Definition.MeasureDefinition
				if def.Item.URI == "" {
					return nil, fmt.Errorf("describe measure %q: item has no uri", item.Measure.LocalIdentifier)
				}
				need(def.Item.URI)
				masters[item.Measure.LocalIdentifier] = *def
				for _, f := range def.Filters {
					switch {
					case f.PositiveAttributeFilter != nil:
						needDisplayForm(f.PositiveAttributeFilter.DisplayForm)
					case f.NegativeAttributeFilter != nil:
						needDisplayForm(f.NegativeAttributeFilter.DisplayForm)
					}
				}
			}
		}
	}

	categories := map[string]string{}
	if len(lookup) > 0 {
		objects, err := c.GetObjects(ctx, workspace, lookup)
		if err != nil {
			return nil, fmt.Errorf("describe bucket items: %w", err)
		}
		attributesMap = maps.Clone(attributesMap)
		if attributesMap == nil {
			attributesMap = map[string]types.MetadataObject{}
		}
		for _, obj := range objects {
			meta, category := obj.Meta()
			categories[meta.URI] = category
			if df := obj.AttributeDisplayForm; df != nil && df.Content.FormOf != "" {
				attributesMap[meta.URI] = types.MetadataObject{URI: df.Content.FormOf}
			}
		}
	}

	var out []string
	for _, bucket := range content.Buckets {
		for _, item := range bucket.Items {
			switch {
			case item.VisualizationAttribute != nil:
				desc, err := describeAttribute(*item.VisualizationAttribute, attributesMap)
				if err != nil {
					return nil, err
				}
				out = append(out, desc)
			case item.Measure != nil && item.Measure.Definition.MeasureDefinition != nil:
				def := item.Measure.Definition.MeasureDefinition
				out = append(out, describeMeasure(*def, categories[def.Item.URI], attributesMap))
			case item.Measure != nil && item.Measure.Definition.PopMeasureDefinition != nil:
				desc, ok, err := describePoP(*item.Measure, masters, categories, attributesMap)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, desc)
				}
			}
		}
	}
	return out, nil
}

// describePoP shifts the master's expression to the previous period of the
// pop attribute. A master that is not a simple measure of content is not
// described.
func describePoP(
	m Measure,
	masters map[string]SimpleMeasureDefinition,
	categories map[string]string,
	attributesMap map[string]types.MetadataObject,
) (string, bool, error) {
	pop := m.Definition.PopMeasureDefinition
	master, ok := masters[pop.MeasureIdentifier]
	if !ok {
		return "", false, nil
	}
	if pop.PopAttribute.URI == "" {
		return "", false, fmt.Errorf("describe measure %q: pop attribute has no uri", m.LocalIdentifier)
	}
	expr := "[" + master.Item.URI + "]"
	if desc := describeMeasure(master, categories[master.Item.URI], attributesMap); desc != master.Item.URI {
		expr = "(" + desc + ")"
	}
	return fmt.Sprintf("SELECT %s FOR PREVIOUS ([%s])", expr, pop.PopAttribute.URI), true, nil
}

func describeAttribute(attr VisualizationAttribute, attributesMap map[string]types.MetadataObject) (string, error) {
	uri := attr.DisplayForm.URI
	if uri == "" {
		return "", fmt.Errorf("describe attribute %q: display form has no uri", attr.LocalIdentifier)
	}
	if a, ok := attributesMap[uri]; ok {
		return a.URI, nil
	}
	return uri, nil
}

// attributeURI returns the attribute behind a display form, or the display
// form itself when the map does not know it.
func attributeURI(displayForm Ref, attributesMap map[string]types.MetadataObject) string {
	if a, ok := attributesMap[displayForm.URI]; ok {
		return a.URI
	}
	return displayForm.URI
}

func describeMeasure(def SimpleMeasureDefinition, category string, attributesMap map[string]types.MetadataObject) string {
	uri := def.Item.URI
	var selection string
	switch category {
	case CategoryMetric:
		if len(def.Filters) == 0 {
			return uri
		}
		selection = "SELECT [" + uri + "]"
	case CategoryAttribute:
		selection = fmt.Sprintf("SELECT %s([%s])", aggregationOr(def.Aggregation, types.AggregationCount), uri)
	default:
		selection = fmt.Sprintf("SELECT %s([%s])", aggregationOr(def.Aggregation, types.AggregationSum), uri)
	}

	var conditions []string
	for _, f := range def.Filters {
		switch {
		case f.PositiveAttributeFilter != nil && len(f.PositiveAttributeFilter.In) > 0:
			conditions = append(conditions, fmt.Sprintf("[%s] IN (%s)",
				attributeURI(f.PositiveAttributeFilter.DisplayForm, attributesMap),
				elementList(f.PositiveAttributeFilter.In)))
		case f.NegativeAttributeFilter != nil && len(f.NegativeAttributeFilter.NotIn) > 0:
			conditions = append(conditions, fmt.Sprintf("[%s] NOT IN (%s)",
				attributeURI(f.NegativeAttributeFilter.DisplayForm, attributesMap),
				elementList(f.NegativeAttributeFilter.NotIn)))
		}
	}
	if len(conditions) == 0 {
		return selection
	}
	return selection + " WHERE " + strings.Join(conditions, " AND ")
}

func aggregationOr(aggregation, fallback string) string {
	if aggregation == "" {
		aggregation = fallback
	}
	return strings.ToUpper(aggregation)
}

func elementList(elements []string) string {
	quoted := make([]string, len(elements))
	for i, e := range elements {
		quoted[i] = "[" + e + "]"
	}
	return strings.Join(quoted, ", ")
}
