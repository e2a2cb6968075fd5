// Package config holds the `idrecon config` subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/pkg/config"
)

// Cmd groups the subcommands that create, inspect and check a config file.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect and validate the configuration",
	Long: `Work with the idrecon configuration file.

Without --config the file is looked up in the user configuration directory.
"idrecon config show" prints the resolved values, environment overrides
included.`,
}

func init() {
	Cmd.AddCommand(initCmd, editCmd, validateCmd, showCmd, schemaCmd)
}

// configPath is the inherited --config flag, falling back to the default
// location.
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.GetDefaultConfigPath()
}
