package catalog

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/catalogue/internal/bear"
)

// fakeBackend records every call and answers from canned data.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	items        []bear.CatalogItem
	objects      []bear.WrappedObject
	queryObjects []bear.WrappedObject
	queryErr     error
	groups       []bear.CatalogGroup
	dateDataSets []bear.DateDataSet
	availableURI []string
	identifiers  map[string]string
	err          map[string]error

	itemsParams []bear.LoadItemsParams
	dateParams  []bear.LoadDateDataSetsParams
	groupParams []bear.LoadGroupsParams
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}, err: map[string]error{}, identifiers: map[string]string{}}
}

func (b *fakeBackend) record(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	return b.err[op]
}

func (b *fakeBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *fakeBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *fakeBackend) LoadAllItems(_ context.Context, _ string, p bear.LoadItemsParams) ([]bear.CatalogItem, error) {
	if err := b.record(bear.OpLoadItems); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.itemsParams = append(b.itemsParams, p)
	return b.items, nil
}

func (b *fakeBackend) LoadAvailableItemURIs(_ context.Context, _ string, p bear.LoadItemsParams) ([]string, error) {
	if err := b.record("loadAvailableItemURIs"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.itemsParams = append(b.itemsParams, p)
	return b.availableURI, nil
}

func (b *fakeBackend) LoadDateDataSets(_ context.Context, _ string, p bear.LoadDateDataSetsParams) (bear.DateDataSetsResponse, error) {
	if err := b.record(bear.OpLoadDateDataSets); err != nil {
		return bear.DateDataSetsResponse{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dateParams = append(b.dateParams, p)
	return bear.DateDataSetsResponse{DateDataSets: b.dateDataSets}, nil
}

func (b *fakeBackend) LoadGroups(_ context.Context, _ string, p bear.LoadGroupsParams) ([]bear.CatalogGroup, error) {
	if err := b.record(bear.OpLoadGroups); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groupParams = append(b.groupParams, p)
	return b.groups, nil
}

func (b *fakeBackend) GetObjects(_ context.Context, _ string, uris []string) ([]bear.WrappedObject, error) {
	if err := b.record(bear.OpGetObjects); err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, u := range uris {
		want[u] = true
	}
	var out []bear.WrappedObject
	for _, obj := range b.objects {
		if meta, _ := obj.Meta(); want[meta.URI] {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (b *fakeBackend) GetObjectsByQuery(_ context.Context, _ string, _ bear.QueryOptions) ([]bear.WrappedObject, error) {
	if err := b.record(bear.OpQueryObjects); err != nil {
		return nil, err
	}
	return b.queryObjects, b.queryErr
}

func (b *fakeBackend) GetIdentifiersFromURIs(_ context.Context, _ string, uris []string) ([]bear.IdentifierURIPair, error) {
	if err := b.record(bear.OpIdentifiers); err != nil {
		return nil, err
	}
	var out []bear.IdentifierURIPair
	for _, u := range uris {
		if id, ok := b.identifiers[u]; ok {
			out = append(out, bear.IdentifierURIPair{Identifier: id, URI: u})
		}
	}
	return out, nil
}

// bucketLocalIDs returns the local identifiers sent as bucket items.
func bucketLocalIDs(content *bear.VisualizationObjectContent) []string {
	var out []string
	if content == nil {
		return out
	}
	for _, b := range content.Buckets {
		for _, item := range b.Items {
			switch {
			case item.Measure != nil:
				out = append(out, item.Measure.LocalIdentifier)
			case item.VisualizationAttribute != nil:
				out = append(out, item.VisualizationAttribute.LocalIdentifier)
			}
		}
	}
	return out
}
