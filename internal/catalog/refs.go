package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// filterIDs holds the tag and dataset filters as backend identifiers.
type filterIDs struct {
	includeTags []string
	excludeTags []string
	dataSet     string
}

// filterIDCache resolves the filters of one options value at most once.
// The first caller's context governs the lookup and its outcome, error
// included, is shared by every later caller.
type filterIDCache struct {
	once sync.Once
	ids  filterIDs
	err  error
}

func (c *filterIDCache) get(ctx context.Context, backend Backend, workspace string, opts types.CatalogOptions) (filterIDs, error) {
	c.once.Do(func() {
		c.ids, c.err = resolveFilterIDs(ctx, backend, workspace, opts)
	})
	return c.ids, c.err
}

func resolveFilterIDs(ctx context.Context, backend Backend, workspace string, opts types.CatalogOptions) (filterIDs, error) {
	refs := make([]types.ObjRef, 0, len(opts.IncludeTags)+len(opts.ExcludeTags)+1)
	refs = append(refs, opts.IncludeTags...)
	refs = append(refs, opts.ExcludeTags...)
	if opts.Dataset != nil {
		refs = append(refs, opts.Dataset)
	}

	ids, err := refsToIdentifiers(ctx, backend, workspace, refs)
	if err != nil {
		return filterIDs{}, fmt.Errorf("resolve filter identifiers: %w", err)
	}

	out := filterIDs{
		includeTags: ids[:len(opts.IncludeTags)],
		excludeTags: ids[len(opts.IncludeTags) : len(opts.IncludeTags)+len(opts.ExcludeTags)],
	}
	if opts.Dataset != nil {
		out.dataSet = ids[len(ids)-1]
	}
	return out, nil
}

// refsToIdentifiers returns the identifier of every ref, in order. URI refs
// are looked up in one backend call; none is made when every ref is an
// identifier.
func refsToIdentifiers(ctx context.Context, backend Backend, workspace string, refs []types.ObjRef) ([]string, error) {
	out := make([]string, len(refs))
	var uris []string
	for i, ref := range refs {
		switch r := ref.(type) {
		case types.IdentifierRef:
			out[i] = r.Identifier
		case types.URIRef:
			uris = append(uris, r.URI)
		default:
			return nil, types.ErrInvalidRef
		}
	}
	if len(uris) == 0 {
		return out, nil
	}

	pairs, err := backend.GetIdentifiersFromURIs(ctx, workspace, uris)
	if err != nil {
		return nil, err
	}
	byURI := make(map[string]string, len(pairs))
	for _, p := range pairs {
		byURI[p.URI] = p.Identifier
	}
	for i, ref := range refs {
		r, ok := ref.(types.URIRef)
		if !ok {
			continue
		}
		id, found := byURI[r.URI]
		if !found {
			return nil, fmt.Errorf("%w: uri %q", types.ErrMappingNotFound, r.URI)
		}
		out[i] = id
	}
	return out, nil
}

// nonEmpty returns nil for an empty list so that the request omits it.
func nonEmpty(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// productionFlag returns the production request parameter: nil when unset,
// 0 when a dataset is targeted, otherwise 1 or 0.
func productionFlag(opts types.CatalogOptions) *int {
	if opts.Production == nil {
		return nil
	}
	flag := 0
	if opts.Dataset == nil && *opts.Production {
		flag = 1
	}
	return &flag
}

// csvDataSets returns the dataset filter of a catalog request.
func csvDataSets(opts types.CatalogOptions, ids filterIDs) []string {
	if opts.Dataset == nil {
		return []string{}
	}
	return []string{ids.dataSet}
}
