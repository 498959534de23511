package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/internal/catalog"
	"github.com/mesh-intelligence/catalogue/pkg/types"
)

type loadFlags struct {
	filter     filterFlags
	production bool
	skipGroups bool
	maxAge     time.Duration
	refresh    bool
}

func newLoadCmd(a *app) *cobra.Command {
	var f loadFlags
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the workspace catalog and store it as a snapshot",
		Long: `Load the catalog of the configured workspace from the backend and store it
as the workspace snapshot. A stored snapshot loaded with the same filters and
younger than --max-age is reused unless --refresh is given.

Example:
  catalogue load --workspace ws --types attribute,measure --include-tag sales
  catalogue load --max-age 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, f)
		},
	}
	f.filter.register(cmd)
	cmd.Flags().BoolVar(&f.production, "production", false, "only production data (unset leaves the backend default)")
	cmd.Flags().BoolVar(&f.skipGroups, "skip-groups", false, "do not load catalog groups")
	cmd.Flags().DurationVar(&f.maxAge, "max-age", 0, "reuse a stored snapshot younger than this")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "always load from the backend")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, f loadFlags) error {
	ctx := cmd.Context()
	cfg, err := a.backendConfig()
	if err != nil {
		return err
	}

	opts, err := f.filter.options(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("production") {
		opts = append(opts, types.WithProduction(f.production))
	}
	if f.skipGroups {
		opts = append(opts, types.WithoutGroups())
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	factory := catalog.NewFactory(client, cfg.Workspace, catalog.WithLogger(a.logger)).WithOptions(opts...)

	if !f.refresh && f.maxAge > 0 {
		snap, err := s.Load(ctx, cfg.Workspace)
		switch {
		case err == nil && time.Since(snap.LoadedAt) < f.maxAge && snap.Options.Equal(factory.Options()):
			a.logger.Info("snapshot reused",
				zap.String("workspace", cfg.Workspace),
				zap.String("id", snap.ID),
				zap.Time("loaded_at", snap.LoadedAt))
			return a.printLoaded(cmd, snap.Info(), true)
		case err != nil && !errors.Is(err, types.ErrSnapshotNotFound):
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	start := time.Now()
	cat, err := factory.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog of %s: %w", cfg.Workspace, err)
	}
	info, err := s.Save(ctx, cat.Snapshot())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	a.logger.Info("catalog loaded",
		zap.String("workspace", cfg.Workspace),
		zap.String("id", info.ID),
		zap.Int("items", info.ItemCount),
		zap.Duration("elapsed", time.Since(start)))
	return a.printLoaded(cmd, info, false)
}

func (a *app) printLoaded(cmd *cobra.Command, info types.SnapshotInfo, reused bool) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, struct {
			types.SnapshotInfo
			Reused bool `json:"reused"`
		}{info, reused})
	}
	verb := "Loaded"
	if reused {
		verb = "Reused"
	}
	fmt.Fprintf(out, "%s snapshot %s of %s: %d items\n", verb, info.ID, info.Workspace, info.ItemCount)
	return nil
}
