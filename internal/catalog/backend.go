// Package catalog loads workspace catalogs from a bear backend and resolves
// which catalog items can be combined with a given set of attributes and
// measures.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/internal/bear"
)

// Backend is the part of the bear API the catalog factories use.
type Backend interface {
	LoadAllItems(ctx context.Context, workspace string, p bear.LoadItemsParams) ([]bear.CatalogItem, error)
	LoadAvailableItemURIs(ctx context.Context, workspace string, p bear.LoadItemsParams) ([]string, error)
	LoadDateDataSets(ctx context.Context, workspace string, p bear.LoadDateDataSetsParams) (bear.DateDataSetsResponse, error)
	LoadGroups(ctx context.Context, workspace string, p bear.LoadGroupsParams) ([]bear.CatalogGroup, error)
	GetObjects(ctx context.Context, workspace string, uris []string) ([]bear.WrappedObject, error)
	GetObjectsByQuery(ctx context.Context, workspace string, opts bear.QueryOptions) ([]bear.WrappedObject, error)
	GetIdentifiersFromURIs(ctx context.Context, workspace string, uris []string) ([]bear.IdentifierURIPair, error)
}

var _ Backend = (*bear.Client)(nil)

// Option configures a factory or a catalog.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
