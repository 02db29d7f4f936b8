package commands

import (
	"github.com/spf13/cobra"
)

// status: describe the stored association; no network activity.
func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored association and its key fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := appCtx.Status()
			if err != nil {
				return err
			}
			return format.writeStatus(cmd.OutOrStdout(), st)
		},
	}
	return cmd
}
