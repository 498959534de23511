package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	s3export "github.com/mesh-intelligence/catalogue/internal/export/s3"
)

func newExportCmd(a *app) *cobra.Command {
	var fetch string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the workspace snapshot to or from S3",
		Long: `Upload the stored snapshot of the configured workspace to the S3 bucket set
by export.s3.*, or with --fetch download a previously exported snapshot
into the local store.

AWS credentials come from the standard environment (AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY, shared config).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exporter, err := s3export.New(ctx, a.exportConfig(), s3export.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if fetch != "" {
				snap, err := exporter.Fetch(ctx, fetch)
				if err != nil {
					return err
				}
				info, err := s.Save(ctx, snap)
				if err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				fmt.Fprintf(out, "Imported snapshot %s of %s from %s\n", info.ID, info.Workspace, fetch)
				return nil
			}

			workspace := a.v.GetString(cfgKeyWorkspace)
			if workspace == "" {
				return fmt.Errorf("%w: no workspace configured", errUsage)
			}
			snap, err := s.Load(ctx, workspace)
			if err != nil {
				return err
			}
			key, err := exporter.Export(ctx, snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported snapshot %s of %s to s3://%s/%s\n", snap.ID, workspace, a.exportConfig().Bucket, key)
			return nil
		},
	}
	cmd.Flags().StringVar(&fetch, "fetch", "", "object key of a snapshot to import")
	return cmd
}
