// Package migrate creates or updates the database schema.
package migrate

import (
	"fjacquet/fintrack/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Create or update the tables of every ledger entity in the configured database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return c.Migrate()
	},
}
