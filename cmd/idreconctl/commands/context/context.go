// Package context implements server context management commands.
package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/contexts"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage server contexts",
	Long: `Manage named idrecon servers. Commands talk to the current context unless
--server is given.

Examples:
  # Add a server and make it current
  idreconctl context add prod https://recon.example.com

  # Switch between servers
  idreconctl context use staging

  # List contexts
  idreconctl context list`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(currentCmd)
}

func openStore() (*contexts.Store, error) {
	store, err := contexts.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open contexts: %w", err)
	}
	return store, nil
}

// ContextInfo describes a context for display.
type ContextInfo struct {
	Name      string `json:"name"`
	Current   bool   `json:"current"`
	ServerURL string `json:"server_url"`
	Output    string `json:"output,omitempty"`
}

// describe lists every context of store in name order.
func describe(store *contexts.Store) ([]ContextInfo, error) {
	current, _, _ := store.Current()
	names := store.Names()
	infos := make([]ContextInfo, 0, len(names))
	for _, name := range names {
		c, err := store.Get(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ContextInfo{
			Name:      name,
			Current:   name == current,
			ServerURL: c.ServerURL,
			Output:    c.Output,
		})
	}
	return infos, nil
}
