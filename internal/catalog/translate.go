package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// translator rewrites the identifier references the backend cannot resolve
// into URI references. Local identifiers are kept.
type translator struct {
	mappings types.Mappings
	out      types.AttributeOrMeasure
}

func (t *translator) VisitAttribute(a types.Attribute) error {
	ref, err := t.displayForm(a.DisplayForm)
	if err != nil {
		return err
	}
	t.out = a.WithDisplayForm(ref)
	return nil
}

func (t *translator) VisitSimpleMeasure(m types.SimpleMeasure) error {
	out := m
	if id, ok := m.Item.(types.IdentifierRef); ok {
		uri, err := t.mappings.MeasureOrFactURI(id.Identifier)
		if err != nil {
			return err
		}
		out = m.WithItem(types.URIRefOf(uri))
	}
	if len(m.Filters) > 0 {
		filters := make([]types.MeasureFilter, len(m.Filters))
		for i, f := range m.Filters {
			ref, err := t.displayForm(f.DisplayForm)
			if err != nil {
				return fmt.Errorf("filter: %w", err)
			}
			f.DisplayForm = ref
			f.Elements = append([]string(nil), f.Elements...)
			filters[i] = f
		}
		out.Filters = filters
	}
	t.out = out
	return nil
}

func (t *translator) VisitArithmeticMeasure(m types.ArithmeticMeasure) error {
	t.out = m
	return nil
}

func (t *translator) VisitPoPMeasure(m types.PoPMeasure) error {
	id, ok := m.PopAttribute.(types.IdentifierRef)
	if !ok {
		t.out = m
		return nil
	}
	uri, err := t.mappings.AttributeOrDateAttributeURI(id.Identifier)
	if err != nil {
		return err
	}
	t.out = m.WithPopAttribute(types.URIRefOf(uri))
	return nil
}

func (t *translator) VisitPreviousPeriodMeasure(m types.PreviousPeriodMeasure) error {
	t.out = m
	return nil
}

func (t *translator) displayForm(ref types.ObjRef) (types.ObjRef, error) {
	id, ok := ref.(types.IdentifierRef)
	if !ok {
		return ref, nil
	}
	uri, err := t.mappings.DisplayFormURI(id.Identifier)
	if err != nil {
		return nil, err
	}
	return types.URIRefOf(uri), nil
}

// translateItems returns copies of items with identifier references replaced
// by URI references.
func translateItems(items []types.AttributeOrMeasure, mappings types.Mappings) ([]types.AttributeOrMeasure, error) {
	out := make([]types.AttributeOrMeasure, 0, len(items))
	for _, item := range items {
		t := translator{mappings: mappings}
		if err := item.Accept(&t); err != nil {
			return nil, fmt.Errorf("translate %q: %w", item.LocalID(), err)
		}
		out = append(out, t.out)
	}
	return out, nil
}
