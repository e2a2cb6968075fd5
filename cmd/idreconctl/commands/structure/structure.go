// Package structure implements organizational unit browsing commands.
package structure

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/recon/browse"
)

// Cmd is the structure subcommand.
var Cmd = &cobra.Command{
	Use:     "structure",
	Aliases: []string{"ou"},
	Short:   "Browse the OU tree of each domain",
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the OU tree with account counts",
	Long: `Show the organizational units of each domain, indented by depth. DIRECT
counts accounts placed in the unit itself, TOTAL includes nested units.`,
	RunE: runTree,
}

var membersCmd = &cobra.Command{
	Use:   "members <domain> <path>",
	Short: "List the accounts placed directly in an OU",
	Long: `List the accounts placed directly in an organizational unit. The path
lists OU names from the root, separated by "/".

Examples:
  idreconctl structure members izhevsk "Users/Developers"`,
	Args: cobra.ExactArgs(2),
	RunE: runMembers,
}

func init() {
	Cmd.AddCommand(treeCmd)
	Cmd.AddCommand(membersCmd)
}

// OUList flattens the OU trees into indented rows.
type OUList []browse.StructureDomain

// Headers implements TableRenderer.
func (ol OUList) Headers() []string {
	return []string{"UNIT", "DIRECT", "TOTAL"}
}

// Rows implements TableRenderer.
func (ol OUList) Rows() [][]string {
	var rows [][]string
	for _, d := range ol {
		rows = append(rows, []string{d.Label, "", output.Count(d.TotalUsers)})
		for _, n := range d.Tree {
			rows = appendNode(rows, n, 1)
		}
	}
	return rows
}

func appendNode(rows [][]string, n *browse.OUNode, depth int) [][]string {
	rows = append(rows, []string{strings.Repeat("  ", depth) + n.Name, output.Count(n.Count), output.Count(n.Total)})
	for _, c := range n.Children {
		rows = appendNode(rows, c, depth+1)
	}
	return rows
}

func runTree(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	tree, err := client.StructureTree()
	if err != nil {
		return fmt.Errorf("failed to get OU tree: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, tree, len(tree) == 0, "No domains found.", OUList(tree))
}

func runMembers(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	members, err := client.StructureMembers(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, members, len(members) == 0, "No members found.", views.MemberList(members))
}
