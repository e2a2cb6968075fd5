// Package groups implements directory group browsing commands.
package groups

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/recon/browse"
)

// Cmd is the groups subcommand.
var Cmd = &cobra.Command{
	Use:   "groups",
	Short: "Browse directory group memberships",
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Count group members per domain",
	Long: `Show every group with its member count, per configured domain.

Examples:
  idreconctl groups tree
  idreconctl groups tree --domain moscow`,
	RunE: runTree,
}

var membersCmd = &cobra.Command{
	Use:   "members <domain> <group>",
	Short: "List the members of one group",
	Args:  cobra.ExactArgs(2),
	RunE:  runMembers,
}

var treeDomain string

func init() {
	treeCmd.Flags().StringVar(&treeDomain, "domain", "", "Only this domain")
	Cmd.AddCommand(treeCmd)
	Cmd.AddCommand(membersCmd)
}

// GroupList flattens the groups tree into rows.
type GroupList []browse.GroupDomain

// Headers implements TableRenderer.
func (gl GroupList) Headers() []string {
	return []string{"DOMAIN", "GROUP", "MEMBERS"}
}

// Rows implements TableRenderer.
func (gl GroupList) Rows() [][]string {
	var rows [][]string
	for _, d := range gl {
		for _, g := range d.Groups {
			rows = append(rows, []string{d.Label, g.Name, output.Count(g.Count)})
		}
	}
	return rows
}

func runTree(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	tree, err := client.GroupsTree()
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	if treeDomain != "" {
		filtered := make([]browse.GroupDomain, 0, 1)
		for _, d := range tree {
			if d.Key == treeDomain {
				filtered = append(filtered, d)
			}
		}
		tree = filtered
	}

	rows := GroupList(tree)
	return cmdutil.PrintOutput(os.Stdout, tree, len(rows.Rows()) == 0, "No groups found.", rows)
}

func runMembers(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	members, err := client.GroupMembers(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, members, len(members) == 0, "No members found.", views.MemberList(members))
}
