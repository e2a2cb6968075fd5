// Package identity implements identity browsing commands.
package identity

import "github.com/spf13/cobra"

// Cmd is the identity subcommand.
var Cmd = &cobra.Command{
	Use:     "identity",
	Aliases: []string{"identities", "id"},
	Short:   "Browse reconciled identities",
	Long: `Browse people as resolved across directory accounts, MFA enrollments
and HR records.

An identity key is either an employee ID or "login:<name>" for accounts
without one.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(duplicatesCmd)
}
