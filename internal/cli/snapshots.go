package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and remove stored catalog snapshots",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer s.Close()

				infos, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				return printInfos(cmd.OutOrStdout(), infos, a.flags.jsonMode)
			},
		},
		&cobra.Command{
			Use:   "show <workspace>",
			Short: "Print the items of a stored snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer s.Close()

				snap, err := s.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printCatalog(cmd.OutOrStdout(), newCatalogView(snap.Workspace, snap.Groups, snap.Items), a.flags.jsonMode)
			},
		},
		&cobra.Command{
			Use:   "delete <workspace>",
			Short: "Delete a stored snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer s.Close()

				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot of %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
