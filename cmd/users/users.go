// Package users manages ledger users.
package users

import (
	"fmt"

	"fjacquet/fintrack/cmd/root"

	"github.com/spf13/cobra"
)

var email string

// Cmd groups the user commands
var Cmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var addCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE:  addFunc,
}

func init() {
	addCmd.Flags().StringVar(&email, "email", "", "Email address of the user")
	Cmd.AddCommand(addCmd)
}

func addFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	user, err := c.GetStore().CreateUser(cmd.Context(), args[0], email)
	if err != nil {
		return err
	}
	return root.WriteOutput([]byte(fmt.Sprintf("%d\t%s\n", user.ID, user.Username)))
}
