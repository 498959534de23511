// Package convert translates between the bear wire model and the catalog
// model in pkg/types.
package convert

import (
	"fmt"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// IsCompatibleItemType reports whether the catalog resource can list items of
// type t. Date datasets come from a separate resource.
func IsCompatibleItemType(t types.CatalogItemType) bool {
	switch t {
	case types.CatalogItemAttribute, types.CatalogItemMeasure, types.CatalogItemFact:
		return true
	}
	return false
}

// ItemType returns the backend name of a catalog item type.
func ItemType(t types.CatalogItemType) (string, error) {
	switch t {
	case types.CatalogItemAttribute:
		return bear.ItemTypeAttribute, nil
	case types.CatalogItemMeasure:
		return bear.ItemTypeMetric, nil
	case types.CatalogItemFact:
		return bear.ItemTypeFact, nil
	}
	return "", fmt.Errorf("%w: %q has no backend item type", types.ErrInvalidItemType, t)
}

// CompatibleItemTypes returns the backend names of the compatible types in ts,
// in order and without duplicates.
func CompatibleItemTypes(ts []types.CatalogItemType) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range ts {
		if !IsCompatibleItemType(t) {
			continue
		}
		name, _ := ItemType(t)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
