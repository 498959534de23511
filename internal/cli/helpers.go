package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/pkg/store"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

// openStore opens the configured snapshot store. The caller must Close it.
func (a *app) openStore(ctx context.Context) (types.SnapshotStore, error) {
	dataDir, err := a.dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	return store.Open(ctx, a.storeConfig(dataDir), a.logger)
}

// newClient builds a backend client from cfg.
func (a *app) newClient(cfg types.Config) (*bear.Client, error) {
	opts := []bear.Option{
		bear.WithLogger(a.logger),
		bear.WithMetrics(a.metrics),
	}
	if cfg.Token != "" {
		opts = append(opts, bear.WithToken(cfg.Token))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, bear.WithTimeout(cfg.Timeout))
	}
	return bear.New(cfg.Endpoint, opts...)
}

// filterFlags holds the catalog filter flags shared by load and available.
type filterFlags struct {
	types       []string
	includeTags []string
	excludeTags []string
	dataset     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.types, "types", nil, "item types: attribute, measure, fact, dateDataset (default all)")
	cmd.Flags().StringArrayVar(&f.includeTags, "include-tag", nil, "only items carrying this tag (identifier or /gdc/ URI; repeatable)")
	cmd.Flags().StringArrayVar(&f.excludeTags, "exclude-tag", nil, "skip items carrying this tag (repeatable)")
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "restrict to one CSV dataset (identifier or /gdc/ URI)")
}

// options converts the flags that were set into catalog options.
func (f *filterFlags) options(cmd *cobra.Command) ([]types.CatalogOption, error) {
	var opts []types.CatalogOption
	if cmd.Flags().Changed("types") {
		itemTypes, err := parseItemTypes(f.types)
		if err != nil {
			return nil, err
		}
		opts = append(opts, types.WithTypes(itemTypes...))
	}
	if len(f.includeTags) > 0 {
		tags, err := parseRefs(f.includeTags, types.ObjectTypeTag)
		if err != nil {
			return nil, fmt.Errorf("--include-tag: %w", err)
		}
		opts = append(opts, types.WithIncludeTags(tags...))
	}
	if len(f.excludeTags) > 0 {
		tags, err := parseRefs(f.excludeTags, types.ObjectTypeTag)
		if err != nil {
			return nil, fmt.Errorf("--exclude-tag: %w", err)
		}
		opts = append(opts, types.WithExcludeTags(tags...))
	}
	if f.dataset != "" {
		ref, err := types.ParseRef(f.dataset, types.ObjectTypeDataSet)
		if err != nil {
			return nil, fmt.Errorf("--dataset: %w", err)
		}
		opts = append(opts, types.WithDataset(ref))
	}
	return opts, nil
}

func parseItemTypes(values []string) ([]types.CatalogItemType, error) {
	out := make([]types.CatalogItemType, 0, len(values))
	for _, v := range values {
		t, err := types.ParseCatalogItemType(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseRefs(values []string, objectType string) ([]types.ObjRef, error) {
	out := make([]types.ObjRef, 0, len(values))
	for _, v := range values {
		ref, err := types.ParseRef(v, objectType)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", v, err)
		}
		out = append(out, ref)
	}
	return out, nil
}
