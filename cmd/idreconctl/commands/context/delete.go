package context

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/contexts"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <name>...",
	Aliases: []string{"rm"},
	Short:   "Delete saved contexts",
	Long: `Delete one or more saved contexts. Deleting the current context leaves no
context selected until "idreconctl context use" is run.

Examples:
  idreconctl context delete staging
  idreconctl context delete staging lab --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runContextDelete(_ *cobra.Command, names []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	current, _, _ := store.Current()

	// Check every name before asking, so a typo does not delete half the list.
	for _, name := range names {
		if _, err := store.Get(name); errors.Is(err, contexts.ErrContextNotFound) {
			return fmt.Errorf("context %q not found", name)
		}
	}

	label := fmt.Sprintf("Delete context %s?", strings.Join(names, ", "))
	return cmdutil.RunWithConfirmation(label, deleteForce, func() error {
		for _, name := range names {
			if err := store.Delete(name); err != nil {
				return fmt.Errorf("failed to delete %q: %w", name, err)
			}
			cmdutil.PrintSuccess(fmt.Sprintf("Context %q deleted", name))
			if name == current {
				fmt.Println("No context is current now. Select one with: idreconctl context use <name>")
			}
		}
		return nil
	})
}
