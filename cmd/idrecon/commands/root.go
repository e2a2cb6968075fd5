// Package commands implements the idrecon server CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idrecon/commands/config"
	"github.com/marmos91/idrecon/internal/cli/builtin"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var cfgFile string

const (
	groupServer = "server"
	groupData   = "data"
)

var rootCmd = &cobra.Command{
	Use:   "idrecon",
	Short: "Identity reconciliation server",
	Long: `idrecon reconciles user accounts across directory domains, the MFA
registry and the HR roster.

The server stores uploaded exports and serves consolidated views and
security findings over a REST API. The data commands work on the configured
database directly, without a running server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// GetConfigFile is the value of --config, empty for the default location.
func GetConfigFile() string {
	return cfgFile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/idrecon/config.yaml)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddGroup(
		&cobra.Group{ID: groupServer, Title: "Server Commands:"},
		&cobra.Group{ID: groupData, Title: "Data Commands:"},
	)
	for _, c := range []*cobra.Command{startCmd, migrateCmd, logsCmd, config.Cmd} {
		c.GroupID = groupServer
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{importCmd, exportCmd, syncCmd} {
		c.GroupID = groupData
		rootCmd.AddCommand(c)
	}

	info := func() builtin.BuildInfo {
		return builtin.BuildInfo{Version: Version, Commit: Commit, Date: Date}
	}
	rootCmd.AddCommand(builtin.NewVersionCmd("idrecon", info), builtin.NewCompletionCmd("idrecon"))
}
