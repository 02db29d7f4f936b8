package commands

import (
	"github.com/spf13/cobra"
)

// get: list every entry matching <search> without passwords.
func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <search>",
		Short: "List the entries matching a search string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := appCtx.Entries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return format.writeList(cmd.OutOrStdout(), entries)
		},
	}
	return cmd
}
