package commands

import (
	"github.com/spf13/cobra"
)

func associateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "associate",
		Short: "Register with the password manager and store the association",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := appCtx.Associate(cmd.Context())
			if err != nil {
				return err
			}
			return format.writeStatus(cmd.OutOrStdout(), st)
		},
	}
	return cmd
}
