// Package builtin holds the subcommands both idrecon binaries share.
package builtin

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary. Fields are set through ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCmd prints build information. info is read when the command
// runs, after main has filled in the ldflags values.
func NewVersionCmd(binary string, info func() BuildInfo) *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bi := info()
			bi.GoVersion = runtime.Version()
			bi.Platform = runtime.GOOS + "/" + runtime.GOARCH
			return printVersion(cmd.OutOrStdout(), binary, bi, short, asJSON)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	return cmd
}

func printVersion(w io.Writer, binary string, bi BuildInfo, short, asJSON bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, bi.Version)
		return err
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bi)
	}

	_, err := fmt.Fprintf(w, "%s %s\n  commit:   %s\n  built:    %s\n  go:       %s\n  platform: %s\n",
		binary, bi.Version, bi.Commit, bi.Date, bi.GoVersion, bi.Platform)
	return err
}

// NewCompletionCmd generates shell completion scripts for the root command.
func NewCompletionCmd(binary string) *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Generate a shell completion script",
		Long: fmt.Sprintf(`Print a completion script for %[1]s to stdout.

  bash:        source <(%[1]s completion bash)
  zsh:         %[1]s completion zsh > "${fpath[1]}/_%[1]s"
  fish:        %[1]s completion fish > ~/.config/fish/completions/%[1]s.fish
  powershell:  %[1]s completion powershell | Out-String | Invoke-Expression`, binary),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
