package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-desk/internal/persistence"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()
			if err := persistence.RunMigrations(rt.pg.PoolHandle(), rt.logger); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}
