// Package org implements company and department browsing commands.
package org

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/cmd/idreconctl/cmdutil"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/views"
	"github.com/marmos91/idrecon/pkg/recon/browse"
)

// Cmd is the org subcommand.
var Cmd = &cobra.Command{
	Use:   "org",
	Short: "Browse accounts by company and department",
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Count accounts per company and department",
	RunE:  runTree,
}

var (
	membersCompany    string
	membersDepartment string
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List accounts of a company or department",
	Long: `List accounts filtered by company and department. Omitted filters match
everything. Use "(no company)" or "(no department)" for empty values.

Examples:
  idreconctl org members --company "Acme" --department "IT"`,
	RunE: runMembers,
}

func init() {
	membersCmd.Flags().StringVar(&membersCompany, "company", "", "Company name")
	membersCmd.Flags().StringVar(&membersDepartment, "department", "", "Department name")
	Cmd.AddCommand(treeCmd)
	Cmd.AddCommand(membersCmd)
}

// CompanyList flattens the organization tree into rows.
type CompanyList []browse.Company

// Headers implements TableRenderer.
func (cl CompanyList) Headers() []string {
	return []string{"COMPANY", "DEPARTMENT", "ACCOUNTS"}
}

// Rows implements TableRenderer.
func (cl CompanyList) Rows() [][]string {
	var rows [][]string
	for _, c := range cl {
		rows = append(rows, []string{c.Name, "", output.Count(c.Count)})
		for _, d := range c.Departments {
			rows = append(rows, []string{"", d.Name, output.Count(d.Count)})
		}
	}
	return rows
}

func runTree(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	tree, err := client.OrgTree()
	if err != nil {
		return fmt.Errorf("failed to get organization tree: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, tree, len(tree) == 0, "No accounts found.", CompanyList(tree))
}

func runMembers(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	members, err := client.OrgMembers(membersCompany, membersDepartment)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, members, len(members) == 0, "No members found.", views.MemberList(members))
}
