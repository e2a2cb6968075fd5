package context

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved contexts",
	Args:    cobra.NoArgs,
	RunE:    runContextList,
}

// contextTable marks the current context with an asterisk.
func contextTable(infos []ContextInfo) *output.TableData {
	t := output.NewTableData("CURRENT", "NAME", "SERVER", "OUTPUT")
	for _, c := range infos {
		mark := ""
		if c.Current {
			mark = "*"
		}
		t.AddRow(mark, c.Name, c.ServerURL, c.Output)
	}
	return t
}

func runContextList(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	infos, err := describe(store)
	if err != nil {
		return err
	}
	return cmdutil.PrintOutput(os.Stdout, infos, len(infos) == 0,
		"No contexts configured. Add one with: idreconctl context add <name> <server-url>",
		contextTable(infos))
}
