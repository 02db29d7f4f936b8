package commands

import (
	"github.com/spf13/cobra"

	"cmdipass/internal/app"
)

// get-one: print the entry chosen by --index or --uuid.
func getOneCmd() *cobra.Command {
	var (
		index        int
		entryUUID    string
		passwordOnly bool
		usernameOnly bool
	)
	cmd := &cobra.Command{
		Use:   "get-one <search>",
		Short: "Print one entry, or only its password or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := app.ByIndex(index)
			if cmd.Flags().Changed("uuid") {
				sel = app.ByUUID(entryUUID)
			}
			entry, err := appCtx.Entry(cmd.Context(), args[0], sel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case passwordOnly:
				return writeField(out, entry.Password)
			case usernameOnly:
				return writeField(out, entry.Login)
			}
			return format.writeOne(out, entry)
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "select the entry at this 0-based position")
	cmd.Flags().StringVar(&entryUUID, "uuid", "", "select the entry with this UUID")
	cmd.Flags().BoolVar(&passwordOnly, "password-only", false, "print only the password")
	cmd.Flags().BoolVar(&usernameOnly, "username-only", false, "print only the username")
	cmd.MarkFlagsMutuallyExclusive("index", "uuid")
	cmd.MarkFlagsOneRequired("index", "uuid")
	cmd.MarkFlagsMutuallyExclusive("password-only", "username-only")
	return cmd
}
