package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token PROFILE_ID",
		Short: "Issue a bearer token for an existing profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			session, err := rt.authService().IssueToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, session.Token)
			fmt.Fprintf(out, "# role %s, expires %s\n", session.Role, session.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
