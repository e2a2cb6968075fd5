package context

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/contexts"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the current context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextUse,
}

func runContextUse(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	if err := store.Use(args[0]); err != nil {
		if errors.Is(err, contexts.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found", args[0])
		}
		return err
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Switched to context '%s'", args[0]))
	return nil
}
