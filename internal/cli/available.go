package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/catalogue/internal/bear"
	"github.com/mesh-intelligence/catalogue/internal/catalog"
	"github.com/mesh-intelligence/catalogue/internal/convert"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

type availableFlags struct {
	filter     filterFlags
	attributes []string
	measures   []string
	insight    string
}

func newAvailableCmd(a *app) *cobra.Command {
	var f availableFlags
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List catalog items available with a set of attributes and measures",
		Long: `List the items of the workspace snapshot that can be combined with the given
attributes and measures, or with the items of an insight file. The insight
file holds a visualization object content ({"visualizationClass": ...,
"buckets": [...]}).

References are identifiers or /gdc/ URIs; prefix with id: or uri: to force
the scheme.

Example:
  catalogue available --attribute label.product --types attribute,measure
  catalogue available --measure metric.revenue --measure fact.amount
  catalogue available --insight insight.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAvailable(cmd, f)
		},
	}
	f.filter.register(cmd)
	cmd.Flags().StringArrayVar(&f.attributes, "attribute", nil, "attribute display form (repeatable)")
	cmd.Flags().StringArrayVar(&f.measures, "measure", nil, "metric, fact or attribute a simple measure computes (repeatable)")
	cmd.Flags().StringVar(&f.insight, "insight", "", "visualization object JSON file")
	return cmd
}

func (a *app) runAvailable(cmd *cobra.Command, f availableFlags) error {
	ctx := cmd.Context()
	cfg, err := a.backendConfig()
	if err != nil {
		return err
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.Load(ctx, cfg.Workspace)
	if err != nil {
		if errors.Is(err, types.ErrSnapshotNotFound) {
			return fmt.Errorf("%w (run catalogue load first)", err)
		}
		return err
	}

	client, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	factory := catalog.NewCatalogFromSnapshot(client, snap, catalog.WithLogger(a.logger)).AvailableItems()

	opts, err := f.filter.options(cmd)
	if err != nil {
		return err
	}
	factory = factory.WithOptions(opts...)

	hasItems := len(f.attributes) > 0 || len(f.measures) > 0
	switch {
	case hasItems && f.insight != "":
		return fmt.Errorf("%w: --insight cannot be combined with --attribute or --measure", errUsage)
	case f.insight != "":
		insight, err := readInsight(f.insight)
		if err != nil {
			return err
		}
		factory = factory.ForInsight(insight)
	case hasItems:
		items, err := bucketItems(f.attributes, f.measures)
		if err != nil {
			return err
		}
		factory = factory.ForItems(items...)
	}

	result, err := factory.Load(ctx)
	if err != nil {
		return fmt.Errorf("resolve available items: %w", err)
	}
	view := newCatalogView(cfg.Workspace, result.AvailableGroups(), result.AvailableItems())
	return printCatalog(cmd.OutOrStdout(), view, a.flags.jsonMode)
}

// bucketItems builds attributes a1..aN and simple measures m1..mN.
func bucketItems(attributes, measures []string) ([]types.AttributeOrMeasure, error) {
	var items []types.AttributeOrMeasure
	for i, v := range attributes {
		ref, err := types.ParseRef(v, types.ObjectTypeDisplayForm)
		if err != nil {
			return nil, fmt.Errorf("--attribute %q: %w", v, err)
		}
		items = append(items, types.Attribute{LocalIdentifier: fmt.Sprintf("a%d", i+1), DisplayForm: ref})
	}
	for i, v := range measures {
		ref, err := types.ParseRef(v, types.ObjectTypeMeasure)
		if err != nil {
			return nil, fmt.Errorf("--measure %q: %w", v, err)
		}
		items = append(items, types.SimpleMeasure{LocalIdentifier: fmt.Sprintf("m%d", i+1), Item: ref})
	}
	return items, nil
}

// readInsight reads a visualization object content file. The file name
// without extension becomes the insight title.
func readInsight(path string) (types.Insight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Insight{}, fmt.Errorf("read insight: %w", err)
	}
	var content bear.VisualizationObjectContent
	if err := json.Unmarshal(data, &content); err != nil {
		return types.Insight{}, fmt.Errorf("%w: decode insight %s: %v", types.ErrInvalidInput, path, err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	insight, err := convert.Insight(title, content)
	if err != nil {
		return types.Insight{}, fmt.Errorf("convert insight %s: %w", path, err)
	}
	return insight, nil
}
