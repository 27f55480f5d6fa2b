package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		deps, log, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()
		defer func() { _ = log.Sync() }()

		if err := deps.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
