package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

type itemKind int

const (
	kindAttribute itemKind = iota
	kindSimpleMeasure
	kindArithmeticMeasure
	kindDerivedMeasure
)

// classifier records the kind of the visited item and, for derived measures,
// the local identifier of the master.
type classifier struct {
	kind   itemKind
	master string
}

func (c *classifier) VisitAttribute(types.Attribute) error {
	c.kind = kindAttribute
	return nil
}

func (c *classifier) VisitSimpleMeasure(types.SimpleMeasure) error {
	c.kind = kindSimpleMeasure
	return nil
}

func (c *classifier) VisitArithmeticMeasure(types.ArithmeticMeasure) error {
	c.kind = kindArithmeticMeasure
	return nil
}

func (c *classifier) VisitPoPMeasure(m types.PoPMeasure) error {
	c.kind, c.master = kindDerivedMeasure, m.MasterLocalID
	return nil
}

func (c *classifier) VisitPreviousPeriodMeasure(m types.PreviousPeriodMeasure) error {
	c.kind, c.master = kindDerivedMeasure, m.MasterLocalID
	return nil
}

func classify(item types.AttributeOrMeasure) (classifier, error) {
	var c classifier
	err := item.Accept(&c)
	return c, err
}

// eligibleItems returns the items the backend can check for compatibility,
// in input order. Attributes and simple measures always qualify; arithmetic
// measures never do. A derived measure qualifies when its master is in items
// and qualifies itself, so a chain of derived measures ending in a simple
// measure qualifies and one ending in an arithmetic measure does not.
func eligibleItems(items []types.AttributeOrMeasure) ([]types.AttributeOrMeasure, error) {
	kinds := make(map[string]classifier, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &types.InvariantError{Op: "filter relevant items", Detail: fmt.Sprintf("item %d is nil", i)}
		}
		c, err := classify(item)
		if err != nil {
			return nil, err
		}
		kinds[item.LocalID()] = c
	}

	out := make([]types.AttributeOrMeasure, 0, len(items))
	for _, item := range items {
		if eligible(item.LocalID(), kinds, map[string]bool{}) {
			out = append(out, item)
		}
	}
	return out, nil
}

func eligible(localID string, kinds map[string]classifier, visiting map[string]bool) bool {
	c, ok := kinds[localID]
	if !ok {
		return false
	}
	switch c.kind {
	case kindAttribute, kindSimpleMeasure:
		return true
	case kindDerivedMeasure:
		if visiting[localID] {
			return false
		}
		visiting[localID] = true
		master, ok := kinds[c.master]
		if !ok || master.kind == kindAttribute {
			return false
		}
		return eligible(c.master, kinds, visiting)
	}
	return false
}
