package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Opens the tracker database and applies any migrations it is missing. Safe to run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", env.cfg.DBPath)
			return nil
		},
	}
}
