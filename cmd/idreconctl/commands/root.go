// Package commands implements the idreconctl client CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	ctxcmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/context"
	groupscmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/groups"
	identitycmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/identity"
	orgcmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/org"
	settingscmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/settings"
	structurecmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/structure"
	uploadcmd "github.com/marmos91/idrecon/cmd/idreconctl/commands/upload"
	"github.com/marmos91/idrecon/internal/cli/builtin"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "idreconctl",
	Short: "Client for idrecon servers",
	Long: `idreconctl talks to an idrecon server over its REST API.

Upload exports, browse consolidated views, run the security audit and manage
OU classification rules. The target server comes from --server or from the
current context (see "idreconctl context").`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bindGlobalFlags,
}

// bindGlobalFlags copies the persistent flags into cmdutil for subcommand
// packages that cannot see rootCmd.
func bindGlobalFlags(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	var err error
	if cmdutil.Flags.ServerURL, err = f.GetString("server"); err != nil {
		return err
	}
	format, err := f.GetString("output")
	if err != nil {
		return err
	}
	cmdutil.Flags.SetOutput(format, f.Changed("output"))
	cmdutil.Flags.NoColor, _ = f.GetBool("no-color")
	cmdutil.Flags.Verbose, _ = f.GetBool("verbose")
	cmdutil.UserAgent = "idreconctl/" + Version
	return nil
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("server", "", "Server URL (overrides the current context)")
	pf.StringP("output", "o", "table", "Output format (table|json|yaml)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "views", Title: "View Commands:"},
		&cobra.Group{ID: "admin", Title: "Administration Commands:"},
	)
	groups := map[string][]*cobra.Command{
		"data":  {uploadcmd.Cmd, syncCmd, statsCmd},
		"views": {consolidatedCmd, identitycmd.Cmd, groupscmd.Cmd, orgcmd.Cmd, structurecmd.Cmd, securityCmd, duplicatesCmd, domainsCmd},
		"admin": {statusCmd, settingscmd.Cmd, ctxcmd.Cmd},
	}
	for id, cmds := range groups {
		for _, c := range cmds {
			c.GroupID = id
			rootCmd.AddCommand(c)
		}
	}

	info := func() builtin.BuildInfo {
		return builtin.BuildInfo{Version: Version, Commit: Commit, Date: Date}
	}
	rootCmd.AddCommand(builtin.NewVersionCmd("idreconctl", info), builtin.NewCompletionCmd("idreconctl"))
}
