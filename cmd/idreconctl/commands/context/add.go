package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/contexts"
)

var (
	addOutput string
	addUse    bool
)

var addCmd = &cobra.Command{
	Use:   "add <name> <server-url>",
	Short: "Add or update a context",
	Long: `Save a server under a name. The first context added becomes current.

Examples:
  idreconctl context add local localhost:8080
  idreconctl context add prod https://recon.example.com --use`,
	Args: cobra.ExactArgs(2),
	RunE: runContextAdd,
}

func init() {
	addCmd.Flags().StringVar(&addOutput, "default-output", "", "Default output format for this context (table|json|yaml)")
	addCmd.Flags().BoolVar(&addUse, "use", false, "Make this the current context")
}

func runContextAdd(cmd *cobra.Command, args []string) error {
	name, url := args[0], args[1]

	store, err := openStore()
	if err != nil {
		return err
	}

	ctx := &contexts.Context{ServerURL: url, Output: addOutput}
	if err := store.Set(name, ctx); err != nil {
		return err
	}
	if addUse {
		if err := store.Use(name); err != nil {
			return err
		}
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Context '%s' saved (%s)", name, ctx.ServerURL))
	return nil
}
