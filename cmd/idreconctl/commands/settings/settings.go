// Package settings implements server settings commands.
package settings

import (
	"github.com/spf13/cobra"
)

// Cmd is the settings subcommand.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage server settings",
}

var ouRulesCmd = &cobra.Command{
	Use:     "ou-rules",
	Aliases: []string{"rules"},
	Short:   "Manage OU classification rules",
	Long: `Manage the rules that assign an account type from the OU path of a
directory account.

Rules are kept per domain key, with "*" applying to domains without their
own list. Within a list the first matching pattern wins.`,
}

func init() {
	ouRulesCmd.AddCommand(getCmd)
	ouRulesCmd.AddCommand(setCmd)
	ouRulesCmd.AddCommand(resetCmd)
	Cmd.AddCommand(ouRulesCmd)
}
