package context

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/contexts"
	"github.com/marmos91/idrecon/internal/cli/output"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show current context",
	RunE:  runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	name, ctx, err := store.Current()
	if errors.Is(err, contexts.ErrNoCurrentContext) {
		return fmt.Errorf("no current context set\n\n" +
			"Add a server first:\n" +
			"  idreconctl context add local http://localhost:8080")
	}
	if err != nil {
		return err
	}

	info := ContextInfo{Name: name, Current: true, ServerURL: ctx.ServerURL, Output: ctx.Output}
	return cmdutil.PrintResource(os.Stdout, info, func() error {
		return output.SimpleTable(os.Stdout, [][2]string{
			{"Context", name},
			{"Server", ctx.ServerURL},
			{"Output", ctx.Output},
			{"File", store.Path()},
		})
	})
}
