package types

import "fmt"

// Mappings translate stable identifiers into backend URIs. They are built by
// the catalog loader and treated as read-only afterwards.
type Mappings struct {
	AttributeByID             map[string]MetadataObject
	AttributeByDisplayFormURI map[string]MetadataObject
	DisplayFormByID           map[string]DisplayForm
	MeasureByID               map[string]CatalogMeasure
	FactByID                  map[string]CatalogFact
	DateAttributeByID         map[string]CatalogDateAttribute
}

// DisplayFormURI returns the URI of the display form with the given identifier.
func (m Mappings) DisplayFormURI(id string) (string, error) {
	if df, ok := m.DisplayFormByID[id]; ok {
		return df.URI, nil
	}
	return "", fmt.Errorf("%w: display form %q", ErrMappingNotFound, id)
}

// MeasureOrFactURI returns the URI of the measure with the given identifier,
// falling back to the fact with that identifier.
func (m Mappings) MeasureOrFactURI(id string) (string, error) {
	if measure, ok := m.MeasureByID[id]; ok {
		return measure.Measure.URI, nil
	}
	if fact, ok := m.FactByID[id]; ok {
		return fact.Fact.URI, nil
	}
	return "", fmt.Errorf("%w: measure or fact %q", ErrMappingNotFound, id)
}

// AttributeOrDateAttributeURI returns the URI of the attribute with the given
// identifier, falling back to the date attribute with that identifier.
func (m Mappings) AttributeOrDateAttributeURI(id string) (string, error) {
	if attr, ok := m.AttributeByID[id]; ok {
		return attr.URI, nil
	}
	if attr, ok := m.DateAttributeByID[id]; ok {
		return attr.Attribute.URI, nil
	}
	return "", fmt.Errorf("%w: attribute or date attribute %q", ErrMappingNotFound, id)
}
