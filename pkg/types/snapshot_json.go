package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// refJSON is the wire shape of an ObjRef: {"identifier": ..., "type": ...} or {"uri": ...}.
type refJSON struct {
	Identifier string `json:"identifier,omitempty"`
	Type       string `json:"type,omitempty"`
	URI        string `json:"uri,omitempty"`
}

func encodeRef(r ObjRef) *refJSON {
	switch v := r.(type) {
	case IdentifierRef:
		return &refJSON{Identifier: v.Identifier, Type: v.Type}
	case URIRef:
		return &refJSON{URI: v.URI}
	}
	return nil
}

func decodeRef(r *refJSON) (ObjRef, error) {
	switch {
	case r == nil:
		return nil, nil
	case r.URI != "":
		return URIRef{URI: r.URI}, nil
	case r.Identifier != "":
		return IdentifierRef{Identifier: r.Identifier, Type: r.Type}, nil
	}
	return nil, ErrInvalidRef
}

func encodeRefs(refs []ObjRef) []*refJSON {
	out := make([]*refJSON, 0, len(refs))
	for _, r := range refs {
		out = append(out, encodeRef(r))
	}
	return out
}

func decodeRefs(refs []*refJSON) ([]ObjRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]ObjRef, 0, len(refs))
	for _, r := range refs {
		ref, err := decodeRef(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// itemJSON is the tagged envelope of a CatalogItem.
type itemJSON struct {
	Type               CatalogItemType        `json:"type"`
	Object             MetadataObject         `json:"object"`
	DefaultDisplayForm *DisplayForm           `json:"defaultDisplayForm,omitempty"`
	GeoPinDisplayForms []DisplayForm          `json:"geoPinDisplayForms,omitempty"`
	Expression         string                 `json:"expression,omitempty"`
	Format             string                 `json:"format,omitempty"`
	Relevance          int                    `json:"relevance,omitempty"`
	DateAttributes     []CatalogDateAttribute `json:"dateAttributes,omitempty"`
	Groups             []*refJSON             `json:"groups,omitempty"`
}

// MarshalCatalogItem encodes item as a tagged JSON object.
func MarshalCatalogItem(item CatalogItem) ([]byte, error) {
	var env itemJSON
	switch v := item.(type) {
	case CatalogAttribute:
		df := v.DefaultDisplayForm
		env = itemJSON{Type: CatalogItemAttribute, Object: v.Attribute, DefaultDisplayForm: &df,
			GeoPinDisplayForms: v.GeoPinDisplayForms, Groups: encodeRefs(v.GroupRefs)}
	case CatalogMeasure:
		env = itemJSON{Type: CatalogItemMeasure, Object: v.Measure, Expression: v.Expression,
			Format: v.Format, Groups: encodeRefs(v.GroupRefs)}
	case CatalogFact:
		env = itemJSON{Type: CatalogItemFact, Object: v.Fact, Groups: encodeRefs(v.GroupRefs)}
	case CatalogDateDataset:
		env = itemJSON{Type: CatalogItemDateDataset, Object: v.DataSet, Relevance: v.Relevance,
			DateAttributes: v.DateAttributes}
	default:
		return nil, &InvariantError{Op: "marshal catalog item", Detail: fmt.Sprintf("unexpected item %T", item)}
	}
	return json.Marshal(env)
}

// UnmarshalCatalogItem decodes an object produced by MarshalCatalogItem.
func UnmarshalCatalogItem(data []byte) (CatalogItem, error) {
	var env itemJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode catalog item: %w", err)
	}
	groups, err := decodeRefs(env.Groups)
	if err != nil {
		return nil, fmt.Errorf("decode catalog item groups: %w", err)
	}
	switch env.Type {
	case CatalogItemAttribute:
		item := CatalogAttribute{Attribute: env.Object, GeoPinDisplayForms: env.GeoPinDisplayForms, GroupRefs: groups}
		if env.DefaultDisplayForm != nil {
			item.DefaultDisplayForm = *env.DefaultDisplayForm
		}
		return item, nil
	case CatalogItemMeasure:
		return CatalogMeasure{Measure: env.Object, Expression: env.Expression, Format: env.Format, GroupRefs: groups}, nil
	case CatalogItemFact:
		return CatalogFact{Fact: env.Object, GroupRefs: groups}, nil
	case CatalogItemDateDataset:
		return CatalogDateDataset{DataSet: env.Object, Relevance: env.Relevance, DateAttributes: env.DateAttributes}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidItemType, env.Type)
}

type optionsJSON struct {
	Types       []CatalogItemType `json:"types"`
	IncludeTags []*refJSON        `json:"includeTags,omitempty"`
	ExcludeTags []*refJSON        `json:"excludeTags,omitempty"`
	Dataset     *refJSON          `json:"dataset,omitempty"`
	Production  *bool             `json:"production,omitempty"`
	SkipGroups  bool              `json:"skipGroups,omitempty"`
}

type groupJSON struct {
	Title string   `json:"title"`
	Tag   *refJSON `json:"tag"`
}

type mappingsJSON struct {
	AttributeByID             map[string]MetadataObject       `json:"attributeById"`
	AttributeByDisplayFormURI map[string]MetadataObject       `json:"attributeByDisplayFormUri"`
	DisplayFormByID           map[string]DisplayForm          `json:"displayFormById"`
	MeasureByID               map[string]json.RawMessage      `json:"measureById"`
	FactByID                  map[string]json.RawMessage      `json:"factById"`
	DateAttributeByID         map[string]CatalogDateAttribute `json:"dateAttributeById"`
}

type snapshotJSON struct {
	ID        string            `json:"id"`
	Workspace string            `json:"workspace"`
	LoadedAt  time.Time         `json:"loadedAt"`
	Options   optionsJSON       `json:"options"`
	Groups    []groupJSON       `json:"groups"`
	Items     []json.RawMessage `json:"items"`
	Mappings  mappingsJSON      `json:"mappings"`
}

// MarshalJSON encodes the snapshot with tagged catalog items.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		ID:        s.ID,
		Workspace: s.Workspace,
		LoadedAt:  s.LoadedAt,
		Options: optionsJSON{
			Types:       s.Options.Types,
			IncludeTags: encodeRefs(s.Options.IncludeTags),
			ExcludeTags: encodeRefs(s.Options.ExcludeTags),
			Dataset:     encodeRef(s.Options.Dataset),
			Production:  s.Options.Production,
			SkipGroups:  s.Options.SkipGroups,
		},
		Groups: make([]groupJSON, 0, len(s.Groups)),
		Items:  make([]json.RawMessage, 0, len(s.Items)),
		Mappings: mappingsJSON{
			AttributeByID:             s.Mappings.AttributeByID,
			AttributeByDisplayFormURI: s.Mappings.AttributeByDisplayFormURI,
			DisplayFormByID:           s.Mappings.DisplayFormByID,
			MeasureByID:               make(map[string]json.RawMessage, len(s.Mappings.MeasureByID)),
			FactByID:                  make(map[string]json.RawMessage, len(s.Mappings.FactByID)),
			DateAttributeByID:         s.Mappings.DateAttributeByID,
		},
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, groupJSON{Title: g.Title, Tag: encodeRef(g.Tag)})
	}
	for _, item := range s.Items {
		raw, err := MarshalCatalogItem(item)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, raw)
	}
	for id, m := range s.Mappings.MeasureByID {
		raw, err := MarshalCatalogItem(m)
		if err != nil {
			return nil, err
		}
		out.Mappings.MeasureByID[id] = raw
	}
	for id, f := range s.Mappings.FactByID {
		raw, err := MarshalCatalogItem(f)
		if err != nil {
			return nil, err
		}
		out.Mappings.FactByID[id] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a snapshot produced by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	include, err := decodeRefs(in.Options.IncludeTags)
	if err != nil {
		return err
	}
	exclude, err := decodeRefs(in.Options.ExcludeTags)
	if err != nil {
		return err
	}
	dataset, err := decodeRef(in.Options.Dataset)
	if err != nil {
		return err
	}

	out := Snapshot{
		ID:        in.ID,
		Workspace: in.Workspace,
		LoadedAt:  in.LoadedAt,
		Options: CatalogOptions{
			Types:       in.Options.Types,
			IncludeTags: include,
			ExcludeTags: exclude,
			Dataset:     dataset,
			Production:  in.Options.Production,
			SkipGroups:  in.Options.SkipGroups,
		},
		Mappings: Mappings{
			AttributeByID:             in.Mappings.AttributeByID,
			AttributeByDisplayFormURI: in.Mappings.AttributeByDisplayFormURI,
			DisplayFormByID:           in.Mappings.DisplayFormByID,
			MeasureByID:               make(map[string]CatalogMeasure, len(in.Mappings.MeasureByID)),
			FactByID:                  make(map[string]CatalogFact, len(in.Mappings.FactByID)),
			DateAttributeByID:         in.Mappings.DateAttributeByID,
		},
	}
	for _, g := range in.Groups {
		tag, err := decodeRef(g.Tag)
		if err != nil {
			return err
		}
		out.Groups = append(out.Groups, CatalogGroup{Title: g.Title, Tag: tag})
	}
	for _, raw := range in.Items {
		item, err := UnmarshalCatalogItem(raw)
		if err != nil {
			return err
		}
		out.Items = append(out.Items, item)
	}
	for id, raw := range in.Mappings.MeasureByID {
		item, err := UnmarshalCatalogItem(raw)
		if err != nil {
			return err
		}
		m, ok := item.(CatalogMeasure)
		if !ok {
			return fmt.Errorf("%w: measure mapping %q holds %s", ErrInvalidItemType, id, item.ItemType())
		}
		out.Mappings.MeasureByID[id] = m
	}
	for id, raw := range in.Mappings.FactByID {
		item, err := UnmarshalCatalogItem(raw)
		if err != nil {
			return err
		}
		f, ok := item.(CatalogFact)
		if !ok {
			return fmt.Errorf("%w: fact mapping %q holds %s", ErrInvalidItemType, id, item.ItemType())
		}
		out.Mappings.FactByID[id] = f
	}
	*s = out
	return nil
}
