package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the ops-desk command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ops-desk",
		Short:         "Operations dashboard for events, payouts and the service desk",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newPayoutDateCmd(),
		newUserCmd(),
		newTokenCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
